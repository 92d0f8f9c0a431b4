package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/model"
)

type userFacade struct {
	api Caller
}

var _ UserFacade = (*userFacade)(nil)

// NewUserFacade returns the facade offered to every signed-in account.
func NewUserFacade(api Caller) UserFacade { return &userFacade{api: api} }

func (f *userFacade) GetUserProfile(ctx context.Context) (model.User, error) {
	var u model.User
	err := get(ctx, f.api, "/auth/me", &u)
	return u, err
}

func (f *userFacade) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := get(ctx, f.api, "/products", &out)
	return out, err
}

func (f *userFacade) SubmitProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Product{}, errs.Validation("title is required")
	}
	if in.Premium <= 0 || in.CoverageAmount <= 0 || in.Duration <= 0 {
		return model.Product{}, errs.Validation("premium, coverage amount and duration must be positive")
	}
	var p model.Product
	err := send(ctx, f.api, http.MethodPost, "/products", in, &p)
	return p, err
}

// PurchasePolicy returns whatever policy object the backend sends; callers decide on success by its id.
func (f *userFacade) PurchasePolicy(ctx context.Context, in PurchaseInput) (model.Policy, error) {
	var p model.Policy
	err := send(ctx, f.api, http.MethodPost, "/products/buy", in, &p)
	return p, err
}

func (f *userFacade) SubmitForClaim(ctx context.Context, policyID int64, amount float64) (model.Claim, error) {
	body := map[string]any{"policy_purchase_id": policyID, "claim_amount": amount}
	var dto claimDTO
	if err := send(ctx, f.api, http.MethodPost, "/claims/claimtriggered", body, &dto); err != nil {
		return model.Claim{}, err
	}
	return dto.toModel(), nil
}

func (f *userFacade) FileClaim(ctx context.Context, in ClaimInput) (model.Claim, error) {
	if in.Amount <= 0 {
		return model.Claim{}, errs.Validation("claim amount must be positive")
	}
	var dto claimDTO
	if err := send(ctx, f.api, http.MethodPost, "/claims", in, &dto); err != nil {
		return model.Claim{}, err
	}
	return dto.toModel(), nil
}

func (f *userFacade) Policies(ctx context.Context) ([]model.Policy, error) {
	return listPolicies(ctx, f.api, "/policies")
}

func (f *userFacade) Claims(ctx context.Context) ([]model.Claim, error) {
	return listClaims(ctx, f.api, "/claims")
}

func (f *userFacade) GetMyPolicies(ctx context.Context) ([]model.Policy, error) {
	return listPolicies(ctx, f.api, "/policies/myPolicies")
}

// GetMyClaims converts date text into time values; status is left as sent.
func (f *userFacade) GetMyClaims(ctx context.Context) ([]model.Claim, error) {
	return listClaims(ctx, f.api, "/claims/userClaims")
}

func (f *userFacade) UpdateProfile(ctx context.Context, name, email string) (model.User, error) {
	return updateProfile(ctx, f.api, name, email)
}

func updateProfile(ctx context.Context, api Caller, name, email string) (model.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return model.User{}, errs.Validation("name and email are required")
	}
	var u model.User
	err := send(ctx, api, http.MethodPut, "/profile", map[string]string{"name": name, "email": email}, &u)
	return u, err
}

func listPolicies(ctx context.Context, api Caller, path string) ([]model.Policy, error) {
	var out []model.Policy
	if err := get(ctx, api, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Policy{}
	}
	return out, nil
}

func listClaims(ctx context.Context, api Caller, path string) ([]model.Claim, error) {
	var dtos []claimDTO
	if err := get(ctx, api, path, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.Claim, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}
