package pages

import (
	"context"

	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/service"
)

// Subject names what an admin decision applies to.
type Subject string

const (
	SubjectProduct Subject = "product"
	SubjectPolicy  Subject = "policy"
	SubjectClaim   Subject = "claim"
)

// ReviewQueues are the items waiting for an admin decision.
type ReviewQueues struct {
	Products []model.Product
	Policies []model.Policy
	Claims   []model.Claim
}

// LoadReviewQueues fetches all three pending queues.
func (p *Pages) LoadReviewQueues(ctx context.Context) (ReviewQueues, *Notice) {
	var q ReviewQueues
	if p.admin == nil {
		n := forbidden
		return q, &n
	}
	var err error
	if q.Products, err = p.admin.PendingProducts(ctx); err != nil {
		return q, failure(err, "Failed to load pending products")
	}
	if q.Policies, err = p.admin.PendingPolicies(ctx); err != nil {
		return q, failure(err, "Failed to load pending policies")
	}
	if q.Claims, err = p.admin.PendingClaims(ctx); err != nil {
		return q, failure(err, "Failed to load pending claims")
	}
	return q, nil
}

// Review records an admin decision on one pending item.
func (p *Pages) Review(ctx context.Context, subj Subject, id int64, d service.Decision) Notice {
	if p.admin == nil {
		return forbidden
	}
	var err error
	switch subj {
	case SubjectProduct:
		_, err = p.admin.ApproveProduct(ctx, id, d)
	case SubjectPolicy:
		_, err = p.admin.ApprovePolicy(ctx, id, d)
	case SubjectClaim:
		_, err = p.admin.ApproveClaim(ctx, id, d)
	default:
		return fail("Unknown review subject " + string(subj))
	}
	if err != nil {
		return *failure(err, "Failed to record decision")
	}
	verdict := "rejected"
	if d.Approve {
		verdict = "approved"
	}
	return ok(titleCase(string(subj)) + " " + verdict)
}

// Admin exposes the admin facade to listing commands; nil for non-admin sessions.
func (p *Pages) Admin() service.AdminFacade { return p.admin }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
