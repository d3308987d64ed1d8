package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scholarship-portal-api/internal/dto"
	"github.com/noah-isme/scholarship-portal-api/internal/models"
	"github.com/noah-isme/scholarship-portal-api/internal/service"
	appErrors "github.com/noah-isme/scholarship-portal-api/pkg/errors"
	"github.com/noah-isme/scholarship-portal-api/pkg/response"
)

type applicationService interface {
	Submit(ctx context.Context, userID, scholarshipID string, details models.ApplicantDetails) (*models.Application, error)
	Transition(ctx context.Context, req service.TransitionRequest) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]models.Application, error)
	ListPendingForReview(ctx context.Context) ([]models.Application, error)
	ListApprovedForFunding(ctx context.Context) ([]models.Application, error)
	Get(ctx context.Context, id string) (*models.Application, error)
}

type exportService interface {
	Applications(ctx context.Context, status models.ApplicationStatus, format service.ExportFormat) ([]byte, string, error)
	SanctionLetter(ctx context.Context, applicationID string) ([]byte, error)
	SanctionLetterLink(ctx context.Context, applicationID string) (string, time.Time, error)
	OpenLetter(token string) ([]byte, error)
}

// ApplicationHandler exposes the application lifecycle endpoints.
type ApplicationHandler struct {
	service applicationService
	exports exportService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(service applicationService, exports exportService) *ApplicationHandler {
	return &ApplicationHandler{service: service, exports: exports}
}

// Create godoc
// @Summary Submit an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.SubmitApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	app, err := h.service.Submit(c.Request.Context(), claims.UserID, req.ScholarshipID, req.Details)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, app)
}

// List godoc
// @Summary List applications
// @Description Students see their own submissions; bureaus filter by status
// @Tags Applications
// @Produce json
// @Param userId query string false "Owner user ID (bureaus only)"
// @Param status query string false "Status filter (bureaus only)"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if claims.Role == models.RoleStudent {
		apps, err := h.service.ListByUser(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, apps, nil)
		return
	}

	if userID := strings.TrimSpace(c.Query("userId")); userID != "" {
		apps, err := h.service.ListByUser(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, apps, nil)
		return
	}

	status := models.ApplicationStatus(strings.TrimSpace(c.Query("status")))
	if status == "" {
		// Each bureau defaults to its own work queue.
		if claims.Role == models.RoleFundingBureau {
			status = models.StatusReviewApproved
		} else {
			status = models.StatusPending
		}
	}
	if !status.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status)))
		return
	}

	var (
		apps []models.Application
		err  error
	)
	switch status {
	case models.StatusPending:
		apps, err = h.service.ListPendingForReview(c.Request.Context())
	case models.StatusReviewApproved:
		apps, err = h.service.ListApprovedForFunding(c.Request.Context())
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only PENDING and REVIEW_APPROVED queues are listable"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// Get godoc
// @Summary Fetch an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	app, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims.Role == models.RoleStudent && app.UserID != claims.UserID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// UpdateStatus godoc
// @Summary Transition an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateStatusRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transition payload"))
		return
	}

	app, err := h.service.Transition(c.Request.Context(), service.TransitionRequest{
		ApplicationID:  c.Param("id"),
		Target:         req.Status,
		Remarks:        strings.TrimSpace(req.Remarks),
		TransferAmount: req.TransferAmount,
		ActorID:        claims.UserID,
		ActorName:      claims.FullName,
		ActorRole:      claims.Role,
		IP:             c.ClientIP(),
		UserAgent:      c.GetHeader("User-Agent"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}

// Export godoc
// @Summary Export a status-scoped application listing
// @Tags Applications
// @Produce text/csv
// @Produce application/pdf
// @Param status query string true "Status filter"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Router /applications/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	status := models.ApplicationStatus(strings.TrimSpace(c.Query("status")))
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv"))))

	payload, contentType, err := h.exports.Applications(c.Request.Context(), status, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("applications-%s-%s.%s", strings.ToLower(string(status)), time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// SanctionLetter godoc
// @Summary Download the sanction letter for a funded application
// @Tags Applications
// @Produce application/pdf
// @Param id path string true "Application ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /applications/{id}/sanction-letter [get]
func (h *ApplicationHandler) SanctionLetter(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	id := c.Param("id")
	if claims.Role == models.RoleStudent {
		app, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		if app.UserID != claims.UserID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	payload, err := h.exports.SanctionLetter(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "sanction-letter-"+id+".pdf"))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// SanctionLetterLink godoc
// @Summary Issue a signed, time-limited download link for a sanction letter
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /applications/{id}/sanction-letter/link [get]
func (h *ApplicationHandler) SanctionLetterLink(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	id := c.Param("id")
	if claims.Role == models.RoleStudent {
		app, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		if app.UserID != claims.UserID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	token, expiresAt, err := h.exports.SanctionLetterLink(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.LetterLinkResponse{
		URL:       "/letters/" + token,
		ExpiresAt: expiresAt.UTC(),
	}, nil)
}

// DownloadLetter godoc
// @Summary Download an archived sanction letter through a signed link
// @Tags Applications
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /letters/{token} [get]
func (h *ApplicationHandler) DownloadLetter(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	payload, err := h.exports.OpenLetter(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sanction-letter.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
