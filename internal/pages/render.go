package pages

import (
	"strconv"
	"strings"
	"time"

	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/service"
)

// StatusLabel is the display form of a status. The stored value is never changed.
func StatusLabel(status string) string { return strings.ToUpper(status) }

// FormatDate renders a date value; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatDateText renders backend date text, passing through anything unparsable.
func FormatDateText(s string) string {
	t, err := service.ParseDate(s)
	if err != nil {
		return s
	}
	return FormatDate(t)
}

// Money renders an amount with two decimals.
func Money(v model.Amount) string { return strconv.FormatFloat(v.Float(), 'f', 2, 64) }

// PolicyTitle falls back to a placeholder for policies without product details.
func PolicyTitle(p model.Policy) string {
	if p.Title == "" {
		return "Untitled Policy"
	}
	return p.Title
}

// PolicyDescription falls back to a placeholder for policies without product details.
func PolicyDescription(p model.Policy) string {
	if p.Description == "" {
		return "No description available"
	}
	return p.Description
}

// PolicyAction names the action offered for p: "claim", "claim-pending" or "".
func PolicyAction(p model.Policy) string {
	switch {
	case p.ClaimPending():
		return "claim-pending"
	case p.CanClaim():
		return "claim"
	default:
		return ""
	}
}
