// Package service contains the domain facades: fixed mappings from UI actions to backend calls.
package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/and161185/policydesk/internal/apiclient"
	"github.com/and161185/policydesk/internal/model"
)

// Caller is the part of the API client the facades need.
type Caller interface {
	Request(ctx context.Context, path string, opts apiclient.RequestOptions) (json.RawMessage, error)
}

// ProfileFacade is shared by users and admins.
type ProfileFacade interface {
	// UpdateProfile changes the caller's display name and email.
	UpdateProfile(ctx context.Context, name, email string) (model.User, error)
}

// UserFacade groups the operations offered to every signed-in account.
type UserFacade interface {
	ProfileFacade

	GetUserProfile(ctx context.Context) (model.User, error)
	Products(ctx context.Context) ([]model.Product, error)
	SubmitProduct(ctx context.Context, in ProductInput) (model.Product, error)
	PurchasePolicy(ctx context.Context, in PurchaseInput) (model.Policy, error)
	SubmitForClaim(ctx context.Context, policyID int64, amount float64) (model.Claim, error)
	FileClaim(ctx context.Context, in ClaimInput) (model.Claim, error)
	Policies(ctx context.Context) ([]model.Policy, error)
	Claims(ctx context.Context) ([]model.Claim, error)
	GetMyPolicies(ctx context.Context) ([]model.Policy, error)
	GetMyClaims(ctx context.Context) ([]model.Claim, error)
}

// AdminFacade groups review queues and decisions. It is only handed to admin sessions.
type AdminFacade interface {
	ProfileFacade

	Users(ctx context.Context) ([]model.User, error)
	Policies(ctx context.Context) ([]model.Policy, error)
	Claims(ctx context.Context) ([]model.Claim, error)
	Transactions(ctx context.Context) ([]model.Transaction, error)

	PendingProducts(ctx context.Context) ([]model.Product, error)
	ApproveProduct(ctx context.Context, productID int64, d Decision) (json.RawMessage, error)
	PendingPolicies(ctx context.Context) ([]model.Policy, error)
	ApprovePolicy(ctx context.Context, policyID int64, d Decision) (json.RawMessage, error)
	PendingClaims(ctx context.Context) ([]model.Claim, error)
	ApproveClaim(ctx context.Context, claimID int64, d Decision) (json.RawMessage, error)
}

// Facades is the role-selected set of facades for one session.
type Facades struct {
	User  UserFacade
	Admin AdminFacade // nil unless the session role is admin
}

// ForSession selects facades by the role recorded at login.
func ForSession(s model.Session, c Caller) Facades {
	f := Facades{User: NewUserFacade(c)}
	if s.Valid() && s.IsAdmin() {
		f.Admin = NewAdminFacade(c)
	}
	return f
}

// ProductInput is a new product submission.
type ProductInput struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	CoverageAmount float64 `json:"coverage_amount"`
	Premium        float64 `json:"premium"`
	Duration       int     `json:"duration"`
}

// PurchaseInput is the body of a policy purchase. Dates use the 2006-01-02 layout.
type PurchaseInput struct {
	ProductID int64  `json:"productId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	UserID    int64  `json:"userId"`
}

// ClaimInput is a free-form claim filed against a policy.
type ClaimInput struct {
	PolicyID    int64   `json:"policyId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Decision is an admin verdict; Reason is optional.
type Decision struct {
	Approve bool   `json:"decision"`
	Reason  string `json:"reason,omitempty"`
}

// Ack is the generic acknowledgement returned by write endpoints.
type Ack struct {
	Message string `json:"message,omitempty"`
	UserID  int64  `json:"userId,omitempty"`
}

func get(ctx context.Context, c Caller, path string, out any) error {
	raw, err := c.Request(ctx, path, apiclient.RequestOptions{Method: http.MethodGet})
	if err != nil {
		return err
	}
	return apiclient.Decode(raw, out)
}

func send(ctx context.Context, c Caller, method, path string, body, out any) error {
	raw, err := c.Request(ctx, path, apiclient.RequestOptions{Method: method, Body: body})
	if err != nil {
		return err
	}
	return apiclient.Decode(raw, out)
}
