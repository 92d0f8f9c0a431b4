package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/and161185/policydesk/internal/model"
)

// claimDTO is a claim as the backend sends it, dates as text.
type claimDTO struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	ProductID       int64        `json:"product_id"`
	ClaimAmount     model.Amount `json:"claim_amount"`
	ClaimDate       string       `json:"claim_date"`
	Status          string       `json:"status"`
	ApprovedBy      *int64       `json:"approved_by"`
	ApprovedAt      *string      `json:"approved_at"`
	RejectionReason *string      `json:"rejection_reason"`
}

// toModel converts a claim. Each date is parsed on its own; an unparsable one is left zero
// so a single bad value does not hide the rest of the claim.
func (d claimDTO) toModel() model.Claim {
	c := model.Claim{
		ID:          d.ID,
		UserID:      d.UserID,
		ProductID:   d.ProductID,
		ClaimAmount: d.ClaimAmount,
		Status:      d.Status,
		ApprovedBy:  d.ApprovedBy,
	}
	if d.RejectionReason != nil {
		c.RejectionReason = *d.RejectionReason
	}
	if t, err := ParseDate(d.ClaimDate); err == nil {
		c.ClaimDate = t
	}
	if d.ApprovedAt != nil && *d.ApprovedAt != "" {
		if at, err := ParseDate(*d.ApprovedAt); err == nil {
			c.ApprovedAt = &at
		}
	}
	return c
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses backend date text. Values without a zone are taken as UTC.
// Empty text yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
