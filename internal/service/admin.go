package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/model"
)

type adminFacade struct {
	api Caller
}

var _ AdminFacade = (*adminFacade)(nil)

// NewAdminFacade returns the review facade. Use ForSession to hand it out by role.
func NewAdminFacade(api Caller) AdminFacade { return &adminFacade{api: api} }

func (f *adminFacade) Users(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := get(ctx, f.api, "/users", &out)
	return out, err
}

func (f *adminFacade) Policies(ctx context.Context) ([]model.Policy, error) {
	return listPolicies(ctx, f.api, "/policies")
}

func (f *adminFacade) Claims(ctx context.Context) ([]model.Claim, error) {
	return listClaims(ctx, f.api, "/claims")
}

func (f *adminFacade) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var out []model.Transaction
	err := get(ctx, f.api, "/transactions", &out)
	return out, err
}

func (f *adminFacade) PendingProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := get(ctx, f.api, "/products/pending", &out)
	return out, err
}

func (f *adminFacade) ApproveProduct(ctx context.Context, productID int64, d Decision) (json.RawMessage, error) {
	return f.decide(ctx, "/products/approve/%d", productID, d)
}

func (f *adminFacade) PendingPolicies(ctx context.Context) ([]model.Policy, error) {
	return listPolicies(ctx, f.api, "/admin/pendingPolicies")
}

func (f *adminFacade) ApprovePolicy(ctx context.Context, policyID int64, d Decision) (json.RawMessage, error) {
	return f.decide(ctx, "/admin/approvePolicy/%d", policyID, d)
}

func (f *adminFacade) PendingClaims(ctx context.Context) ([]model.Claim, error) {
	return listClaims(ctx, f.api, "/admin/pendingClaims")
}

func (f *adminFacade) ApproveClaim(ctx context.Context, claimID int64, d Decision) (json.RawMessage, error) {
	return f.decide(ctx, "/admin/approveClaim/%d", claimID, d)
}

func (f *adminFacade) UpdateProfile(ctx context.Context, name, email string) (model.User, error) {
	return updateProfile(ctx, f.api, name, email)
}

func (f *adminFacade) decide(ctx context.Context, pathFmt string, id int64, d Decision) (json.RawMessage, error) {
	if id <= 0 {
		return nil, errs.Validation("a positive id is required")
	}
	d.Reason = strings.TrimSpace(d.Reason)
	var out json.RawMessage
	err := send(ctx, f.api, http.MethodPost, fmt.Sprintf(pathFmt, id), d, &out)
	return out, err
}
