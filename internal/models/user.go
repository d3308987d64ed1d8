package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	// RoleStudent can browse scholarships and submit applications.
	RoleStudent UserRole = "STUDENT"
	// RoleReviewBureau performs the first approval stage.
	RoleReviewBureau UserRole = "REVIEW_BUREAU"
	// RoleFundingBureau performs the second approval stage and disburses funds.
	RoleFundingBureau UserRole = "FUNDING_BUREAU"
)

// User represents a portal user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
