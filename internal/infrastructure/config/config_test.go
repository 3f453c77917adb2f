package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"PAY_APP_NAME":                 os.Getenv("PAY_APP_NAME"),
		"PAY_APP_ENV":                  os.Getenv("PAY_APP_ENV"),
		"PAY_APP_PORT":                 os.Getenv("PAY_APP_PORT"),
		"PAY_DATABASE_HOST":            os.Getenv("PAY_DATABASE_HOST"),
		"PAY_DATABASE_PORT":            os.Getenv("PAY_DATABASE_PORT"),
		"PAY_DATABASE_USER":            os.Getenv("PAY_DATABASE_USER"),
		"PAY_DATABASE_PASSWORD":        os.Getenv("PAY_DATABASE_PASSWORD"),
		"PAY_DATABASE_DBNAME":          os.Getenv("PAY_DATABASE_DBNAME"),
		"PAY_DATABASE_SSLMODE":         os.Getenv("PAY_DATABASE_SSLMODE"),
		"PAY_DATABASE_MAX_OPEN_CONNS":  os.Getenv("PAY_DATABASE_MAX_OPEN_CONNS"),
		"PAY_DATABASE_MAX_IDLE_CONNS":  os.Getenv("PAY_DATABASE_MAX_IDLE_CONNS"),
		"PAY_ACCOUNTING_BASE_URL":      os.Getenv("PAY_ACCOUNTING_BASE_URL"),
		"PAY_ACCOUNTING_API_KEY":       os.Getenv("PAY_ACCOUNTING_API_KEY"),
		"PAY_ACCOUNTING_BANK_ACCOUNTS": os.Getenv("PAY_ACCOUNTING_BANK_ACCOUNTS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "payments-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "payments", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, []string{"BANK_PBB", "BANK_MBB"}, cfg.Accounting.BankAccounts)
	})

	t.Run("loads values from environment variables with PAY prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("PAY_APP_NAME", "test-app")
		os.Setenv("PAY_APP_PORT", "9000")
		os.Setenv("PAY_DATABASE_HOST", "testdb.local")
		os.Setenv("PAY_DATABASE_PORT", "5433")
		os.Setenv("PAY_DATABASE_USER", "testuser")
		os.Setenv("PAY_DATABASE_PASSWORD", "testpass")
		os.Setenv("PAY_ACCOUNTING_BASE_URL", "http://ledger.local:9090")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "http://ledger.local:9090", cfg.Accounting.BaseURL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("PAY_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("PAY_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("production requires database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("PAY_APP_ENV", "production")
		os.Setenv("PAY_DATABASE_SSLMODE", "require")
		os.Setenv("PAY_ACCOUNTING_API_KEY", "key")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "payments",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "/payments")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss/word", "special characters must be escaped")
}
