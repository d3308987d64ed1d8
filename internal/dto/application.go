package dto

import (
	"time"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
)

// SubmitApplicationRequest is the payload for creating an application.
type SubmitApplicationRequest struct {
	ScholarshipID string                  `json:"scholarship_id" validate:"required"`
	Details       models.ApplicantDetails `json:"details" validate:"required"`
}

// UpdateStatusRequest is the payload for transitioning an application.
// TransferAmount is only consulted for funding approvals.
type UpdateStatusRequest struct {
	Status         models.ApplicationStatus `json:"status" validate:"required"`
	Remarks        string                   `json:"remarks"`
	TransferAmount *int64                   `json:"transfer_amount,omitempty"`
}

// LetterLinkResponse carries a signed sanction-letter download link.
type LetterLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
