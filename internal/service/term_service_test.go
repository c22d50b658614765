package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-defense-api/internal/models"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
)

type mockTermRepo struct {
	terms        map[string]models.Term
	sessionCount map[string]int
	created      *models.Term
	updated      *models.Term
	deleted      []string
}

func (m *mockTermRepo) List(ctx context.Context, filter models.TermFilter) ([]models.Term, int, error) {
	var list []models.Term
	for _, term := range m.terms {
		list = append(list, term)
	}
	return list, len(list), nil
}

func (m *mockTermRepo) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if term, ok := m.terms[id]; ok {
		return &term, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTermRepo) ExistsByYearAndHalf(ctx context.Context, year int, half models.TermHalf, excludeID string) (bool, error) {
	for _, term := range m.terms {
		if term.Year == year && term.Half == half && term.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTermRepo) Create(ctx context.Context, term *models.Term) error {
	if m.terms == nil {
		m.terms = make(map[string]models.Term)
	}
	if term.ID == "" {
		term.ID = "new-term"
	}
	m.terms[term.ID] = *term
	m.created = term
	return nil
}

func (m *mockTermRepo) Update(ctx context.Context, term *models.Term) error {
	m.terms[term.ID] = *term
	m.updated = term
	return nil
}

func (m *mockTermRepo) Delete(ctx context.Context, id string) error {
	delete(m.terms, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockTermRepo) CountSessions(ctx context.Context, id string) (int, error) {
	return m.sessionCount[id], nil
}

func newTermService(repo *mockTermRepo) *TermService {
	return NewTermService(repo, 1300, validator.New(), zap.NewNop())
}

func termRequest() CreateTermRequest {
	return CreateTermRequest{
		Year:      1403,
		Half:      models.TermHalfFirst,
		StartDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestTermServiceCreate(t *testing.T) {
	repo := &mockTermRepo{}
	svc := newTermService(repo)

	term, err := svc.Create(context.Background(), termRequest())
	require.NoError(t, err)
	assert.Equal(t, 1403, term.Year)
	assert.NotNil(t, repo.created)
}

func TestTermServiceCreateDuplicateYearHalf(t *testing.T) {
	repo := &mockTermRepo{terms: map[string]models.Term{"t1": {ID: "t1", Year: 1403, Half: models.TermHalfFirst}}}
	svc := newTermService(repo)

	_, err := svc.Create(context.Background(), termRequest())
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrConflict.Code, typed.Code)
}

func TestTermServiceCreateBelowMinYear(t *testing.T) {
	svc := newTermService(&mockTermRepo{})

	req := termRequest()
	req.Year = 1299
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestTermServiceCreateReversedDates(t *testing.T) {
	svc := newTermService(&mockTermRepo{})

	req := termRequest()
	req.StartDate, req.EndDate = req.EndDate, req.StartDate
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestTermServiceUpdateFrozenWithSessions(t *testing.T) {
	repo := &mockTermRepo{
		terms:        map[string]models.Term{"t1": {ID: "t1", Year: 1403, Half: models.TermHalfFirst}},
		sessionCount: map[string]int{"t1": 2},
	}
	svc := newTermService(repo)

	req := UpdateTermRequest(termRequest())
	req.Half = models.TermHalfSecond
	_, err := svc.Update(context.Background(), "t1", req)
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, typed.Code)
	assert.Nil(t, repo.updated)
}

func TestTermServiceUpdate(t *testing.T) {
	repo := &mockTermRepo{terms: map[string]models.Term{"t1": {ID: "t1", Year: 1403, Half: models.TermHalfFirst}}}
	svc := newTermService(repo)

	req := UpdateTermRequest(termRequest())
	req.Half = models.TermHalfSecond
	term, err := svc.Update(context.Background(), "t1", req)
	require.NoError(t, err)
	assert.Equal(t, models.TermHalfSecond, term.Half)
}

func TestTermServiceDeleteBlockedBySessions(t *testing.T) {
	repo := &mockTermRepo{
		terms:        map[string]models.Term{"t1": {ID: "t1"}},
		sessionCount: map[string]int{"t1": 1},
	}
	svc := newTermService(repo)

	err := svc.Delete(context.Background(), "t1")
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, typed.Code)
	assert.Empty(t, repo.deleted)
}

func TestTermServiceDelete(t *testing.T) {
	repo := &mockTermRepo{terms: map[string]models.Term{"t1": {ID: "t1"}}}
	svc := newTermService(repo)

	require.NoError(t, svc.Delete(context.Background(), "t1"))
	assert.Contains(t, repo.deleted, "t1")
}
