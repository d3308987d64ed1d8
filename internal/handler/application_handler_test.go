package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-portal-api/internal/dto"
	"github.com/noah-isme/scholarship-portal-api/internal/middleware"
	"github.com/noah-isme/scholarship-portal-api/internal/models"
	"github.com/noah-isme/scholarship-portal-api/internal/service"
	appErrors "github.com/noah-isme/scholarship-portal-api/pkg/errors"
)

type applicationServiceMock struct {
	submitResp     *models.Application
	submitErr      error
	transitionResp *models.Application
	transitionErr  error
	listResp       []models.Application
	getResp        *models.Application
	getErr         error

	lastTransition service.TransitionRequest
	listByUserID   string
	pendingCalled  bool
	approvedCalled bool
}

func (m *applicationServiceMock) Submit(ctx context.Context, userID, scholarshipID string, details models.ApplicantDetails) (*models.Application, error) {
	return m.submitResp, m.submitErr
}

func (m *applicationServiceMock) Transition(ctx context.Context, req service.TransitionRequest) (*models.Application, error) {
	m.lastTransition = req
	return m.transitionResp, m.transitionErr
}

func (m *applicationServiceMock) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	m.listByUserID = userID
	return m.listResp, nil
}

func (m *applicationServiceMock) ListPendingForReview(ctx context.Context) ([]models.Application, error) {
	m.pendingCalled = true
	return m.listResp, nil
}

func (m *applicationServiceMock) ListApprovedForFunding(ctx context.Context) ([]models.Application, error) {
	m.approvedCalled = true
	return m.listResp, nil
}

func (m *applicationServiceMock) Get(ctx context.Context, id string) (*models.Application, error) {
	return m.getResp, m.getErr
}

type exportServiceMock struct {
	payload     []byte
	contentType string
	err         error
	letter      []byte
	letterErr   error
	linkToken   string
	linkExpiry  time.Time
	linkErr     error
	openErr     error
	openedToken string
}

func (m *exportServiceMock) Applications(ctx context.Context, status models.ApplicationStatus, format service.ExportFormat) ([]byte, string, error) {
	return m.payload, m.contentType, m.err
}

func (m *exportServiceMock) SanctionLetter(ctx context.Context, applicationID string) ([]byte, error) {
	return m.letter, m.letterErr
}

func (m *exportServiceMock) SanctionLetterLink(ctx context.Context, applicationID string) (string, time.Time, error) {
	return m.linkToken, m.linkExpiry, m.linkErr
}

func (m *exportServiceMock) OpenLetter(token string) ([]byte, error) {
	m.openedToken = token
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.letter, nil
}

func testContext(t *testing.T, method, target string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Username: "ananya", FullName: "Ananya Sharma", Role: models.RoleStudent}
}

func TestApplicationHandlerCreate(t *testing.T) {
	mockSvc := &applicationServiceMock{
		submitResp: &models.Application{ID: "a1", URN: "SCH-2026-0001", Status: models.StatusPending},
	}
	handler := NewApplicationHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.SubmitApplicationRequest{ScholarshipID: "s1"})
	c, w := testContext(t, http.MethodPost, "/applications", payload, studentClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "SCH-2026-0001")
}

func TestApplicationHandlerCreateInvalidBody(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{}, nil)

	c, w := testContext(t, http.MethodPost, "/applications", []byte(`{"scholarship_id":`), studentClaims())

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationHandlerCreateUnauthenticated(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{}, nil)

	c, w := testContext(t, http.MethodPost, "/applications", []byte(`{}`), nil)

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplicationHandlerListStudentSeesOwn(t *testing.T) {
	mockSvc := &applicationServiceMock{listResp: []models.Application{{ID: "a1", UserID: "u1"}}}
	handler := NewApplicationHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/applications?userId=someone-else", nil, studentClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", mockSvc.listByUserID)
}

func TestApplicationHandlerListReviewQueueDefault(t *testing.T) {
	mockSvc := &applicationServiceMock{}
	handler := NewApplicationHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/applications", nil, &models.JWTClaims{UserID: "r1", Role: models.RoleReviewBureau})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.pendingCalled)
	assert.False(t, mockSvc.approvedCalled)
}

func TestApplicationHandlerListFundingQueueDefault(t *testing.T) {
	mockSvc := &applicationServiceMock{}
	handler := NewApplicationHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/applications", nil, &models.JWTClaims{UserID: "f1", Role: models.RoleFundingBureau})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.approvedCalled)
	assert.False(t, mockSvc.pendingCalled)
}

func TestApplicationHandlerListRejectsNonQueueStatus(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/applications?status=REJECTED", nil, &models.JWTClaims{UserID: "r1", Role: models.RoleReviewBureau})

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationHandlerGetOwnership(t *testing.T) {
	mockSvc := &applicationServiceMock{getResp: &models.Application{ID: "a1", UserID: "someone-else"}}
	handler := NewApplicationHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/applications/a1", nil, studentClaims())
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestApplicationHandlerUpdateStatus(t *testing.T) {
	mockSvc := &applicationServiceMock{
		transitionResp: &models.Application{ID: "a1", Status: models.StatusReviewApproved},
	}
	handler := NewApplicationHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.UpdateStatusRequest{Status: models.StatusReviewApproved, Remarks: "looks good"})
	c, w := testContext(t, http.MethodPatch, "/applications/a1/status", payload, &models.JWTClaims{UserID: "r1", FullName: "Review Desk", Role: models.RoleReviewBureau})
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a1", mockSvc.lastTransition.ApplicationID)
	assert.Equal(t, models.StatusReviewApproved, mockSvc.lastTransition.Target)
	assert.Equal(t, models.RoleReviewBureau, mockSvc.lastTransition.ActorRole)
	assert.Equal(t, "Review Desk", mockSvc.lastTransition.ActorName)
}

func TestApplicationHandlerUpdateStatusConflict(t *testing.T) {
	mockSvc := &applicationServiceMock{transitionErr: appErrors.ErrInvalidTransition}
	handler := NewApplicationHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.UpdateStatusRequest{Status: models.StatusReviewApproved})
	c, w := testContext(t, http.MethodPatch, "/applications/a1/status", payload, &models.JWTClaims{UserID: "r1", Role: models.RoleReviewBureau})
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestApplicationHandlerExport(t *testing.T) {
	exports := &exportServiceMock{payload: []byte("URN,Applicant\n"), contentType: "text/csv"}
	handler := NewApplicationHandler(&applicationServiceMock{}, exports)

	c, w := testContext(t, http.MethodGet, "/applications/export?status=PENDING&format=csv", nil, &models.JWTClaims{UserID: "r1", Role: models.RoleReviewBureau})

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestApplicationHandlerSanctionLetterOwnership(t *testing.T) {
	mockSvc := &applicationServiceMock{getResp: &models.Application{ID: "a1", UserID: "someone-else"}}
	exports := &exportServiceMock{letter: []byte("%PDF-1.4")}
	handler := NewApplicationHandler(mockSvc, exports)

	c, w := testContext(t, http.MethodGet, "/applications/a1/sanction-letter", nil, studentClaims())
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.SanctionLetter(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestApplicationHandlerSanctionLetterDownload(t *testing.T) {
	exports := &exportServiceMock{letter: []byte("%PDF-1.4")}
	handler := NewApplicationHandler(&applicationServiceMock{}, exports)

	c, w := testContext(t, http.MethodGet, "/applications/a1/sanction-letter", nil, &models.JWTClaims{UserID: "f1", Role: models.RoleFundingBureau})
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.SanctionLetter(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestApplicationHandlerSanctionLetterLink(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC()
	exports := &exportServiceMock{linkToken: "tok123", linkExpiry: expiry}
	handler := NewApplicationHandler(&applicationServiceMock{}, exports)

	c, w := testContext(t, http.MethodGet, "/applications/a1/sanction-letter/link", nil, &models.JWTClaims{UserID: "f1", Role: models.RoleFundingBureau})
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.SanctionLetterLink(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/letters/tok123")
	assert.Contains(t, w.Body.String(), "expires_at")
}

func TestApplicationHandlerSanctionLetterLinkOwnership(t *testing.T) {
	mockSvc := &applicationServiceMock{getResp: &models.Application{ID: "a1", UserID: "someone-else"}}
	handler := NewApplicationHandler(mockSvc, &exportServiceMock{linkToken: "tok123"})

	c, w := testContext(t, http.MethodGet, "/applications/a1/sanction-letter/link", nil, studentClaims())
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.SanctionLetterLink(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestApplicationHandlerDownloadLetter(t *testing.T) {
	exports := &exportServiceMock{letter: []byte("%PDF-1.4")}
	handler := NewApplicationHandler(&applicationServiceMock{}, exports)

	c, w := testContext(t, http.MethodGet, "/letters/tok123", nil, nil)
	c.Params = gin.Params{{Key: "token", Value: "tok123"}}

	handler.DownloadLetter(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok123", exports.openedToken)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestApplicationHandlerDownloadLetterInvalidToken(t *testing.T) {
	exports := &exportServiceMock{openErr: appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired letter link")}
	handler := NewApplicationHandler(&applicationServiceMock{}, exports)

	c, w := testContext(t, http.MethodGet, "/letters/bad", nil, nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.DownloadLetter(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
