package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
)

func scholarshipColumns() []string {
	return []string{"id", "title", "description", "eligibility", "amount", "deadline", "category", "active", "created_at", "updated_at"}
}

func TestListActiveScholarships(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scholarshipColumns()).
		AddRow("s1", "National Merit Scholarship", "Merit based", "Above 90%", int64(50000), now.AddDate(0, 6, 0), "MERIT", true, now, now).
		AddRow("s2", "Sports Excellence Scholarship", "For athletes", "State level", int64(75000), now.AddDate(0, 8, 0), "SPORTS", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, eligibility, amount, deadline, category, active, created_at, updated_at FROM scholarships WHERE active = TRUE ORDER BY created_at ASC")).
		WillReturnRows(rows)

	scholarships, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, scholarships, 2)
	assert.Equal(t, "National Merit Scholarship", scholarships[0].Title)
	assert.Equal(t, int64(75000), scholarships[1].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindScholarshipByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scholarshipColumns()).
		AddRow("s1", "National Merit Scholarship", "Merit based", "Above 90%", int64(50000), now, "MERIT", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, eligibility, amount, deadline, category, active, created_at, updated_at FROM scholarships WHERE id = $1 LIMIT 1")).
		WithArgs("s1").
		WillReturnRows(rows)

	scholarship, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", scholarship.ID)
	assert.False(t, scholarship.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindScholarshipByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectQuery("SELECT .* FROM scholarships WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateScholarship(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectExec("INSERT INTO scholarships").WillReturnResult(sqlmock.NewResult(1, 1))

	scholarship := &models.Scholarship{
		Title:    "Minority Community Scholarship",
		Amount:   30000,
		Deadline: time.Now().AddDate(0, 4, 0),
		Active:   true,
	}
	err := repo.Create(context.Background(), scholarship)
	require.NoError(t, err)
	assert.NotEmpty(t, scholarship.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveScholarships(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scholarships WHERE active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
