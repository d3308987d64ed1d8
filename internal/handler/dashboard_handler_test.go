package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-portal-api/internal/dto"
	"github.com/noah-isme/scholarship-portal-api/internal/models"
)

type dashboardServiceMock struct {
	stats      *dto.DashboardStats
	cacheHit   bool
	err        error
	lastUserID string
}

func (m *dashboardServiceMock) Stats(ctx context.Context, userID string) (*dto.DashboardStats, bool, error) {
	m.lastUserID = userID
	return m.stats, m.cacheHit, m.err
}

func TestDashboardHandlerStats(t *testing.T) {
	mockSvc := &dashboardServiceMock{stats: &dto.DashboardStats{TotalApplications: 7, ActiveScholarships: 3}}
	handler := NewDashboardHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/dashboard/stats", nil, &models.JWTClaims{UserID: "r1", Role: models.RoleReviewBureau})

	handler.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mockSvc.lastUserID)

	var envelope struct {
		Data dto.DashboardStats     `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 7, envelope.Data.TotalApplications)
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestDashboardHandlerStatsStudentScoped(t *testing.T) {
	mockSvc := &dashboardServiceMock{stats: &dto.DashboardStats{}}
	handler := NewDashboardHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/dashboard/stats?userId=someone-else", nil, studentClaims())

	handler.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", mockSvc.lastUserID)
}

func TestDashboardHandlerStatsBureauUserScope(t *testing.T) {
	mockSvc := &dashboardServiceMock{stats: &dto.DashboardStats{}}
	handler := NewDashboardHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/dashboard/stats?userId=u9", nil, &models.JWTClaims{UserID: "f1", Role: models.RoleFundingBureau})

	handler.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u9", mockSvc.lastUserID)
}

func TestDashboardHandlerStatsUnauthenticated(t *testing.T) {
	handler := NewDashboardHandler(&dashboardServiceMock{stats: &dto.DashboardStats{}})

	c, w := testContext(t, http.MethodGet, "/dashboard/stats", nil, nil)

	handler.Stats(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
