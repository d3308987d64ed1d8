package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
	appErrors "github.com/noah-isme/scholarship-portal-api/pkg/errors"
)

type mockScholarshipRepo struct {
	scholarships []models.Scholarship
	count        int
	created      []*models.Scholarship
	findErr      error
}

func (m *mockScholarshipRepo) ListActive(ctx context.Context) ([]models.Scholarship, error) {
	return m.scholarships, nil
}

func (m *mockScholarshipRepo) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.scholarships {
		if m.scholarships[i].ID == id {
			return &m.scholarships[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockScholarshipRepo) Create(ctx context.Context, scholarship *models.Scholarship) error {
	m.created = append(m.created, scholarship)
	return nil
}

func (m *mockScholarshipRepo) Count(ctx context.Context) (int, error) {
	return m.count, nil
}

func TestScholarshipGetNotFound(t *testing.T) {
	svc := NewScholarshipService(&mockScholarshipRepo{}, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScholarshipList(t *testing.T) {
	repo := &mockScholarshipRepo{scholarships: []models.Scholarship{
		{ID: "s1", Title: "National Merit Scholarship", Active: true},
	}}
	svc := NewScholarshipService(repo, nil)

	scholarships, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, scholarships, 1)
	assert.Equal(t, "National Merit Scholarship", scholarships[0].Title)
}

func TestSeedPopulatesEmptyCatalog(t *testing.T) {
	repo := &mockScholarshipRepo{count: 0}
	svc := NewScholarshipService(repo, nil)

	require.NoError(t, svc.Seed(context.Background()))
	require.Len(t, repo.created, 3)
	assert.Equal(t, "National Merit Scholarship", repo.created[0].Title)
	assert.Equal(t, int64(75000), repo.created[2].Amount)
}

func TestSeedSkipsNonEmptyCatalog(t *testing.T) {
	repo := &mockScholarshipRepo{count: 3}
	svc := NewScholarshipService(repo, nil)

	require.NoError(t, svc.Seed(context.Background()))
	assert.Empty(t, repo.created)
}
