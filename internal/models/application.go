package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	// StatusPending is the initial state of every submitted application.
	StatusPending ApplicationStatus = "PENDING"
	// StatusReviewApproved means the review bureau cleared the application.
	StatusReviewApproved ApplicationStatus = "REVIEW_APPROVED"
	// StatusFundingApproved is terminal: the funding bureau authorized a
	// disbursement.
	StatusFundingApproved ApplicationStatus = "FUNDING_APPROVED"
	// StatusRejected is terminal: either bureau declined the application.
	StatusRejected ApplicationStatus = "REJECTED"
)

// Valid reports whether the status is one of the defined lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewApproved, StatusFundingApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusFundingApproved || s == StatusRejected
}

type transitionKey struct {
	From ApplicationStatus
	To   ApplicationStatus
}

// transitionTable maps each permitted transition to the bureau role allowed
// to perform it. Any pair absent from the table is an invalid transition,
// including everything out of a terminal state and any stage skip.
var transitionTable = map[transitionKey]UserRole{
	{StatusPending, StatusReviewApproved}:         RoleReviewBureau,
	{StatusPending, StatusRejected}:               RoleReviewBureau,
	{StatusReviewApproved, StatusFundingApproved}: RoleFundingBureau,
	{StatusReviewApproved, StatusRejected}:        RoleFundingBureau,
}

// TransitionRole returns the role required to move an application from one
// status to another. ok is false when the transition is not permitted at all.
func TransitionRole(from, to ApplicationStatus) (UserRole, bool) {
	role, ok := transitionTable[transitionKey{From: from, To: to}]
	return role, ok
}

// ApplicantDetails is the fixed-shape detail record captured at submission.
// It is stored as a single JSONB column; the portal form treats every field
// as mandatory.
type ApplicantDetails struct {
	FullName    string   `json:"full_name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required"`
	DateOfBirth string   `json:"date_of_birth" validate:"required"`
	Address     string   `json:"address" validate:"required"`
	Marks       string   `json:"marks" validate:"required"`
	Institution string   `json:"institution" validate:"required"`
	Course      string   `json:"course" validate:"required"`
	Year        string   `json:"year" validate:"required"`
	BankAccount string   `json:"bank_account" validate:"required"`
	IFSCCode    string   `json:"ifsc_code" validate:"required"`
	Documents   []string `json:"documents" validate:"required,min=1"`
}

// Value implements driver.Valuer for JSONB storage.
func (d ApplicantDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (d *ApplicantDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		return nil
	}
	return fmt.Errorf("unsupported applicant details type %T", src)
}

// Application is the central ledger entity. The embedded Scholarship is
// resolved against the current catalog row at read time, never frozen at
// submission.
type Application struct {
	ID               string            `db:"id" json:"id"`
	URN              string            `db:"urn" json:"urn"`
	UserID           string            `db:"user_id" json:"user_id"`
	ScholarshipID    string            `db:"scholarship_id" json:"scholarship_id"`
	Scholarship      *Scholarship      `db:"-" json:"scholarship,omitempty"`
	Details          ApplicantDetails  `db:"details" json:"details"`
	Status           ApplicationStatus `db:"status" json:"status"`
	Remarks          string            `db:"remarks" json:"remarks"`
	TransferAmount   *int64            `db:"transfer_amount" json:"transfer_amount,omitempty"`
	ReviewedAt       *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy       *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	FundingDecidedAt *time.Time        `db:"funding_decided_at" json:"funding_decided_at,omitempty"`
	FundingDecidedBy *string           `db:"funding_decided_by" json:"funding_decided_by,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}
