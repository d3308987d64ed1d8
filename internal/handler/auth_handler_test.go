package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
	"github.com/noah-isme/scholarship-portal-api/internal/service"
)

type authRepoMock struct {
	users     map[string]*models.User
	created   []*models.User
	auditLogs []*models.AuditLog
}

func (m *authRepoMock) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *authRepoMock) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *authRepoMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *authRepoMock) Create(ctx context.Context, user *models.User) error {
	user.ID = "u1"
	m.created = append(m.created, user)
	return nil
}

func (m *authRepoMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newAuthHandler(repo *authRepoMock) *AuthHandler {
	svc := service.NewAuthService(repo, nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "scholarship-portal-api",
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerRegister(t *testing.T) {
	repo := &authRepoMock{}
	handler := newAuthHandler(repo)

	payload, _ := json.Marshal(models.RegisterRequest{
		Username:        "ananya",
		Email:           "ananya@example.com",
		FullName:        "Ananya Sharma",
		Password:        "password",
		ConfirmPassword: "password",
	})
	c, w := testContext(t, http.MethodPost, "/auth/register", payload, nil)

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.RoleStudent, repo.created[0].Role)
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	handler := newAuthHandler(&authRepoMock{})

	c, w := testContext(t, http.MethodPost, "/auth/register", []byte(`{"username":`), nil)

	handler.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &authRepoMock{users: map[string]*models.User{
		"ananya": {ID: "u1", Username: "ananya", PasswordHash: string(hash), Role: models.RoleStudent, Active: true},
	}}
	handler := newAuthHandler(repo)

	payload, _ := json.Marshal(models.LoginRequest{Username: "ananya", Password: "password"})
	c, w := testContext(t, http.MethodPost, "/auth/login", payload, nil)

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	handler := newAuthHandler(&authRepoMock{})

	payload, _ := json.Marshal(models.LoginRequest{Username: "ghost", Password: "password"})
	c, w := testContext(t, http.MethodPost, "/auth/login", payload, nil)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	handler := newAuthHandler(&authRepoMock{})

	c, w := testContext(t, http.MethodGet, "/auth/me", nil, studentClaims())

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ananya")
}
