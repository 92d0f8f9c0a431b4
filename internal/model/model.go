// Package model defines the transfer shapes exchanged with the insurance backend.
package model

import "time"

// Role is the account role reported by the backend.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PolicyStatus is the lifecycle status of a purchased policy.
type PolicyStatus string

const (
	PolicyPending      PolicyStatus = "pending"
	PolicyActive       PolicyStatus = "active"
	PolicyClaimed      PolicyStatus = "claimed"
	PolicyClaimPending PolicyStatus = "claim_pending"
	PolicyApproved     PolicyStatus = "approved"
	PolicyDenied       PolicyStatus = "denied"
)

// ClaimStatus is the state of a claim filed against a policy.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimAccepted ClaimStatus = "accepted"
	ClaimRejected ClaimStatus = "rejected"
)

// Session is the client-held proof of authentication plus minimal cached identity.
type Session struct {
	Token     string
	UserID    int64
	Role      Role
	User      *User     // redundant copy of the login user, may be nil
	ExpiresAt time.Time // decoded from the token for display only, zero if unknown
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool { return s.Token != "" }

// IsAdmin reports whether the session was established for an admin account.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// User is an account as returned by the backend.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Product is an insurance product offered for purchase.
type Product struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Premium        Amount  `json:"premium"`
	CoverageAmount Amount  `json:"coverage_amount"`
	Duration       int     `json:"duration"`
	Status         string  `json:"status,omitempty"`
}

// Policy is a purchased product instance owned by a user.
// Status and ClaimStatus are independent; together they decide which actions are offered.
type Policy struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"user_id"`
	ProductID    int64        `json:"product_id"`
	PurchaseDate string       `json:"purchase_date"`
	ValidUntil   string       `json:"valid_until,omitempty"`
	Status       PolicyStatus `json:"status"`
	ClaimStatus  ClaimStatus  `json:"claim_status,omitempty"`
	ClaimAmount  Amount       `json:"claim_amount,omitempty"`
	ClaimDate    string       `json:"claim_date,omitempty"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
}

// CanClaim reports whether a claim may be filed: the policy is approved and no claim is pending.
func (p Policy) CanClaim() bool {
	return p.Status == PolicyApproved && p.ClaimStatus != ClaimPending
}

// ClaimPending reports whether a submitted claim awaits a decision.
func (p Policy) ClaimPending() bool { return p.ClaimStatus == ClaimPending }

// Claim is a monetary request against a policy, subject to admin approval.
type Claim struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	ProductID       int64      `json:"productId"`
	ClaimAmount     Amount     `json:"claimAmount"`
	ClaimDate       time.Time  `json:"claimDate"`
	Status          string     `json:"status"`
	ApprovedBy      *int64     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
}

// Transaction is a payment record listed to administrators.
type Transaction struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	PolicyID  int64   `json:"policy_id,omitempty"`
	Amount    Amount  `json:"amount"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
}
