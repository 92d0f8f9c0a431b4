// Package pages holds the page-level flows shared by the CLI and the portal: what a view loads
// on mount, what an action sends, and which notice the user sees afterwards.
package pages

import (
	"context"
	"time"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/service"
	"github.com/and161185/policydesk/internal/session"
)

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a transient user-visible message.
type Notice struct {
	Level Level
	Text  string
}

func (n Notice) Failed() bool { return n.Level == LevelError }

func ok(text string) Notice   { return Notice{Level: LevelSuccess, Text: text} }
func fail(text string) Notice { return Notice{Level: LevelError, Text: text} }

// failure converts err into an error notice, preferring the backend's own message.
func failure(err error, fallback string) *Notice {
	n := fail(errs.Message(err, fallback))
	return &n
}

// listFailure is failure for listings, which report a response of the wrong shape separately.
func listFailure(err error, fallback string) *Notice {
	if errs.KindOf(err) == errs.KindMalformedResponse {
		n := fail(InvalidDataText)
		return &n
	}
	return failure(err, fallback)
}

// InvalidDataText is shown when a listing response is not what the backend should send.
const InvalidDataText = "Invalid data received from server."

// DefaultClaimAmount is the amount filed by a one-click claim.
const DefaultClaimAmount = 5000

const dateLayout = "2006-01-02"

// Pages runs page flows for one session.
type Pages struct {
	user  service.UserFacade
	admin service.AdminFacade
	sess  session.Reader
	now   func() time.Time
}

// New binds page flows to role-selected facades and the session they were selected for.
func New(f service.Facades, sess session.Reader) *Pages {
	return &Pages{user: f.User, admin: f.Admin, sess: sess, now: time.Now}
}

// WithClock replaces the clock used for purchase dates.
func (p *Pages) WithClock(now func() time.Time) *Pages {
	p.now = now
	return p
}

// IsAdmin reports whether review pages are available.
func (p *Pages) IsAdmin() bool { return p.admin != nil }

// Dashboard is the landing page summary.
type Dashboard struct {
	User          model.User
	Policies      int
	Approved      int
	Claims        int
	PendingClaims int
}

func (p *Pages) Dashboard(ctx context.Context) (Dashboard, *Notice) {
	var d Dashboard
	u, err := p.user.GetUserProfile(ctx)
	if err != nil {
		return d, failure(err, "Failed to load profile")
	}
	d.User = u

	policies, err := p.user.GetMyPolicies(ctx)
	if err != nil {
		return d, failure(err, "Failed to load policies")
	}
	d.Policies = len(policies)
	for _, pol := range policies {
		if pol.Status == model.PolicyApproved {
			d.Approved++
		}
	}

	claims, err := p.user.GetMyClaims(ctx)
	if err != nil {
		return d, failure(err, "Failed to fetch claims")
	}
	d.Claims = len(claims)
	for _, c := range claims {
		if c.Status == string(model.ClaimPending) {
			d.PendingClaims++
		}
	}
	return d, nil
}

func (p *Pages) LoadProducts(ctx context.Context) ([]model.Product, *Notice) {
	out, err := p.user.Products(ctx)
	if err != nil {
		return nil, failure(err, "Failed to load products")
	}
	return out, nil
}

// Purchase buys productID for the session user from today until endDate
// (2006-01-02; empty means one year from today).
func (p *Pages) Purchase(ctx context.Context, productID int64, endDate string) (model.Policy, Notice) {
	if productID <= 0 {
		return model.Policy{}, fail("Please select a product before purchasing")
	}
	uid, has := p.sess.UserID()
	if !has {
		return model.Policy{}, fail("User not logged in")
	}

	today := p.now().UTC()
	start := today.Format(dateLayout)
	if endDate == "" {
		endDate = today.AddDate(1, 0, 0).Format(dateLayout)
	} else {
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return model.Policy{}, fail("End date must use the YYYY-MM-DD format")
		}
		if end.Format(dateLayout) < start {
			return model.Policy{}, fail("End date must not be in the past")
		}
	}

	pol, err := p.user.PurchasePolicy(ctx, service.PurchaseInput{
		ProductID: productID,
		StartDate: start,
		EndDate:   endDate,
		UserID:    uid,
	})
	if err == nil && pol.ID == 0 {
		err = errs.ErrPurchaseFailed
	}
	if err != nil {
		return model.Policy{}, *failure(err, "Failed to purchase policy")
	}
	return pol, ok("Policy purchased successfully!")
}

func (p *Pages) LoadPolicies(ctx context.Context) ([]model.Policy, *Notice) {
	out, err := p.user.GetMyPolicies(ctx)
	if err != nil {
		return nil, listFailure(err, "Failed to load policies")
	}
	return out, nil
}

// Claim files a claim of amount against policyID.
func (p *Pages) Claim(ctx context.Context, policyID int64, amount float64) Notice {
	if policyID <= 0 {
		return fail("Please select a policy")
	}
	if amount <= 0 {
		return fail("Claim amount must be positive")
	}
	if _, err := p.user.SubmitForClaim(ctx, policyID, amount); err != nil {
		return *failure(err, "Failed to submit claim")
	}
	return ok("Claim submitted. Awaiting admin approval.")
}

func (p *Pages) LoadClaims(ctx context.Context) ([]model.Claim, *Notice) {
	out, err := p.user.GetMyClaims(ctx)
	if err != nil {
		return nil, listFailure(err, "Failed to fetch claims")
	}
	return out, nil
}

// UpdateProfile changes the display name and email of the session's account.
func (p *Pages) UpdateProfile(ctx context.Context, name, email string) (model.User, Notice) {
	u, err := p.user.UpdateProfile(ctx, name, email)
	if err != nil {
		return model.User{}, *failure(err, "Failed to update profile")
	}
	return u, ok("Profile updated")
}

// SubmitProduct proposes a new product for admin approval.
func (p *Pages) SubmitProduct(ctx context.Context, in service.ProductInput) (model.Product, Notice) {
	prod, err := p.user.SubmitProduct(ctx, in)
	if err != nil {
		return model.Product{}, *failure(err, "Failed to submit product")
	}
	return prod, ok("Product submitted for approval")
}

// forbidden is returned by review pages for non-admin sessions.
var forbidden = fail(errs.ErrForbidden.Error())

// IsForbidden reports whether n is the notice shown to non-admin sessions.
func IsForbidden(n *Notice) bool { return n != nil && *n == forbidden }
