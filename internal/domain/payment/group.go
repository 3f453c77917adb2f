package payment

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DisplayGroup is the read-side projection of payment records that belong
// together: either all members of one batch, or a single ungrouped record
type DisplayGroup struct {
	// Key is the batch reference for grouped records, or the record ID
	// string for standalone records
	Key            string          `json:"key"`
	BatchReference *string         `json:"batch_reference,omitempty"`
	Amount         decimal.Decimal `json:"amount"`       // Sum of member amounts
	PaymentDate    time.Time       `json:"payment_date"` // Earliest member payment date
	Status         RecordStatus    `json:"status"`
	Members        []PaymentRecord `json:"members"`
}

// HasPending returns true if any member awaits confirmation
func (g DisplayGroup) HasPending() bool {
	return g.Status == RecordStatusPending
}

// MemberIDs returns the IDs of the member records
func (g DisplayGroup) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// ProjectGroups collapses a window of payment records into display groups.
// It is a pure function of the record snapshot: records sharing a non-null
// batch reference form one group, ungrouped records stand alone. Groups
// with a pending member sort first; the rest sort by representative date
// descending, with the group key as a stable tie-break.
func ProjectGroups(records []PaymentRecord) []DisplayGroup {
	byKey := make(map[string]*DisplayGroup)
	order := make([]string, 0, len(records))

	for _, record := range records {
		key := record.ID.String()
		if record.BatchReference != nil && *record.BatchReference != "" {
			key = *record.BatchReference
		}

		group, ok := byKey[key]
		if !ok {
			group = &DisplayGroup{
				Key:            key,
				BatchReference: record.BatchReference,
				Amount:         decimal.Zero,
				PaymentDate:    record.PaymentDate,
			}
			byKey[key] = group
			order = append(order, key)
		}

		group.Amount = group.Amount.Add(record.Amount)
		if record.PaymentDate.Before(group.PaymentDate) {
			group.PaymentDate = record.PaymentDate
		}
		group.Members = append(group.Members, record)
	}

	groups := make([]DisplayGroup, 0, len(order))
	for _, key := range order {
		group := byKey[key]
		group.Status = groupStatus(group.Members)
		groups = append(groups, *group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		pi, pj := groups[i].HasPending(), groups[j].HasPending()
		if pi != pj {
			return pi
		}
		if !groups[i].PaymentDate.Equal(groups[j].PaymentDate) {
			return groups[i].PaymentDate.After(groups[j].PaymentDate)
		}
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// groupStatus derives the group state: pending if any member is pending,
// else active if any member is active, else cancelled
func groupStatus(members []PaymentRecord) RecordStatus {
	hasActive := false
	for _, m := range members {
		switch m.Status {
		case RecordStatusPending:
			return RecordStatusPending
		case RecordStatusActive:
			hasActive = true
		}
	}
	if hasActive {
		return RecordStatusActive
	}
	return RecordStatusCancelled
}
