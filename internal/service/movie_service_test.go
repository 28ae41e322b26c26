package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func TestMovieService_Search(t *testing.T) {
	local := []model.Movie{
		{ID: uuid.New(), Title: "Inception", Rating: 8.8, ExternalIDs: model.ExternalIDs{TMDBID: int64Ptr(27205)}, IsActive: true},
		{ID: uuid.New(), Title: "Inception Extras", Rating: 6.1, IsActive: true},
	}

	t.Run("local first and provider duplicates dropped", func(t *testing.T) {
		repo := new(MockMovieRepository)
		provider := &MockMovieProvider{enabled: true}
		repo.On("Search", mock.Anything, "inception", localSearchLimit).Return(local, nil)
		provider.On("Search", mock.Anything, "inception", 1).Return([]model.MovieSummary{
			{ID: "27205", Title: "Inception", Source: model.SourceTMDB},
			{ID: "64956", Title: "Inception: The Cobol Job", Source: model.SourceTMDB},
		}, nil)

		res, err := NewMovieService(repo, provider).Search(context.Background(), "  inception ", 1)

		require.NoError(t, err)
		require.Len(t, res.Movies, 3)
		assert.Equal(t, 2, res.LocalCount)
		assert.Equal(t, model.SourceLocal, res.Movies[0].Source)
		assert.Equal(t, model.SourceLocal, res.Movies[1].Source)
		assert.Equal(t, "64956", res.Movies[2].ID)
		provider.AssertExpectations(t)
	})

	t.Run("provider failure degrades to local", func(t *testing.T) {
		repo := new(MockMovieRepository)
		provider := &MockMovieProvider{enabled: true}
		repo.On("Search", mock.Anything, "inception", localSearchLimit).Return(local, nil)
		provider.On("Search", mock.Anything, "inception", 1).Return(nil, errors.New("breaker open"))

		res, err := NewMovieService(repo, provider).Search(context.Background(), "inception", 1)

		require.NoError(t, err)
		assert.Len(t, res.Movies, 2)
	})

	t.Run("disabled provider is never called", func(t *testing.T) {
		repo := new(MockMovieRepository)
		provider := &MockMovieProvider{enabled: false}
		repo.On("Search", mock.Anything, "inception", localSearchLimit).Return([]model.Movie{}, nil)

		res, err := NewMovieService(repo, provider).Search(context.Background(), "inception", 1)

		require.NoError(t, err)
		assert.Empty(t, res.Movies)
		provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := NewMovieService(new(MockMovieRepository), nil).Search(context.Background(), "   ", 1)
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "كلمة البحث مطلوبة", ve.Message)
	})
}

func TestMovieService_Popular(t *testing.T) {
	t.Run("placeholders without provider", func(t *testing.T) {
		res, err := NewMovieService(new(MockMovieRepository), &MockMovieProvider{}).Popular(context.Background(), 1)

		require.NoError(t, err)
		assert.False(t, res.FromProvider)
		require.Len(t, res.Movies, 2)
		assert.Equal(t, "default_1", res.Movies[0].ID)
		assert.Equal(t, "default_2", res.Movies[1].ID)
		assert.Equal(t, model.SourceDefault, res.Movies[0].Source)
	})

	t.Run("placeholders when provider fails", func(t *testing.T) {
		provider := &MockMovieProvider{enabled: true}
		provider.On("Popular", mock.Anything, 2).Return(nil, errors.New("timeout"))

		res, err := NewMovieService(new(MockMovieRepository), provider).Popular(context.Background(), 2)

		require.NoError(t, err)
		assert.False(t, res.FromProvider)
		assert.Len(t, res.Movies, 2)
	})

	t.Run("provider listing", func(t *testing.T) {
		provider := &MockMovieProvider{enabled: true}
		provider.On("Popular", mock.Anything, 1).Return([]model.MovieSummary{{ID: "550", Source: model.SourceTMDB}}, nil)

		res, err := NewMovieService(new(MockMovieRepository), provider).Popular(context.Background(), 1)

		require.NoError(t, err)
		assert.True(t, res.FromProvider)
		assert.Len(t, res.Movies, 1)
	})
}

func TestMovieService_Get(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name          string
		id            string
		enabled       bool
		setupMock     func(*MockMovieRepository, *MockMovieProvider)
		expectedError error
		expectLocal   bool
	}{
		{
			name: "local movie",
			id:   id.String(),
			setupMock: func(r *MockMovieRepository, p *MockMovieProvider) {
				r.On("FindByID", mock.Anything, id).Return(&model.Movie{ID: id, Title: "Local", Rating: 7, Runtime: 125, IsActive: true}, nil)
			},
			expectLocal: true,
		},
		{
			name: "inactive local movie",
			id:   id.String(),
			setupMock: func(r *MockMovieRepository, p *MockMovieProvider) {
				r.On("FindByID", mock.Anything, id).Return(&model.Movie{ID: id, Title: "Gone", IsActive: false}, nil)
			},
			expectedError: apperrors.ErrMovieNotFound,
		},
		{
			name: "unknown local movie",
			id:   id.String(),
			setupMock: func(r *MockMovieRepository, p *MockMovieProvider) {
				r.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrMovieNotFound,
		},
		{
			name: "numeric id without provider",
			id:   "550",
			setupMock: func(r *MockMovieRepository, p *MockMovieProvider) {
				r.On("FindByTMDBID", mock.Anything, int64(550)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrMovieNotFound,
		},
		{
			name:    "numeric id imported locally",
			id:      "550",
			enabled: true,
			setupMock: func(r *MockMovieRepository, p *MockMovieProvider) {
				r.On("FindByTMDBID", mock.Anything, int64(550)).Return(&model.Movie{ID: id, Title: "Fight Club", IsActive: true}, nil)
			},
			expectLocal: true,
		},
		{
			name:    "numeric id from provider",
			id:      "550",
			enabled: true,
			setupMock: func(r *MockMovieRepository, p *MockMovieProvider) {
				r.On("FindByTMDBID", mock.Anything, int64(550)).Return(nil, gorm.ErrRecordNotFound)
				p.On("Details", mock.Anything, int64(550)).Return(&model.MovieDetails{
					MovieSummary: model.MovieSummary{ID: "550", Title: "Fight Club", Source: model.SourceTMDB},
					Runtime:      139,
				}, nil)
			},
		},
		{
			name:    "provider failure is not found",
			id:      "550",
			enabled: true,
			setupMock: func(r *MockMovieRepository, p *MockMovieProvider) {
				r.On("FindByTMDBID", mock.Anything, int64(550)).Return(nil, gorm.ErrRecordNotFound)
				p.On("Details", mock.Anything, int64(550)).Return(nil, errors.New("upstream 503"))
			},
			expectedError: apperrors.ErrMovieNotFound,
		},
		{
			name:          "garbage id",
			id:            "not-a-movie",
			setupMock:     func(r *MockMovieRepository, p *MockMovieProvider) {},
			expectedError: apperrors.ErrMovieNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockMovieRepository)
			provider := &MockMovieProvider{enabled: tt.enabled}
			tt.setupMock(repo, provider)

			lookup, err := NewMovieService(repo, provider).Get(context.Background(), tt.id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, lookup)
			} else {
				require.NoError(t, err)
				if tt.expectLocal {
					require.NotNil(t, lookup.Local)
					assert.Nil(t, lookup.Provider)
					assert.Same(t, lookup.Local, lookup.Value())
				} else {
					require.NotNil(t, lookup.Provider)
					assert.Nil(t, lookup.Local)
				}
			}
			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestMovieService_CreateUpdateDeactivate(t *testing.T) {
	admin := uuid.New()

	t.Run("create", func(t *testing.T) {
		repo := new(MockMovieRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Movie")).Return(nil)

		movie, err := NewMovieService(repo, nil).Create(context.Background(), MovieInput{
			Title:       "  New Movie ",
			ReleaseDate: "2024-05-01",
			Rating:      7.5,
			VoteCount:   200,
		}, admin)

		require.NoError(t, err)
		assert.Equal(t, "New Movie", movie.Title)
		assert.True(t, movie.IsActive)
		assert.Equal(t, admin, *movie.AddedBy)
		require.NotNil(t, movie.ReleaseDate)
		assert.Equal(t, 2024, movie.ReleaseDate.Year())
		assert.Equal(t, []string{}, movie.Genres)
	})

	t.Run("create rejects invalid rating", func(t *testing.T) {
		repo := new(MockMovieRepository)
		_, err := NewMovieService(repo, nil).Create(context.Background(), MovieInput{Title: "x", Rating: 11}, admin)

		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("create rejects bad release date", func(t *testing.T) {
		_, err := NewMovieService(new(MockMovieRepository), nil).Create(context.Background(), MovieInput{Title: "x", ReleaseDate: "31/01/2024"}, admin)
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("update missing movie", func(t *testing.T) {
		id := uuid.New()
		repo := new(MockMovieRepository)
		repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := NewMovieService(repo, nil).Update(context.Background(), id, MovieInput{Title: "x"})
		assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)
	})

	t.Run("update keeps identity", func(t *testing.T) {
		id := uuid.New()
		existing := &model.Movie{ID: id, Title: "Old", IsActive: true, AddedBy: &admin}
		repo := new(MockMovieRepository)
		repo.On("FindByID", mock.Anything, id).Return(existing, nil)
		repo.On("Update", mock.Anything, existing).Return(nil)

		movie, err := NewMovieService(repo, nil).Update(context.Background(), id, MovieInput{Title: "New"})

		require.NoError(t, err)
		assert.Equal(t, id, movie.ID)
		assert.Equal(t, "New", movie.Title)
		assert.Equal(t, &admin, movie.AddedBy)
	})

	t.Run("deactivate", func(t *testing.T) {
		id := uuid.New()
		repo := new(MockMovieRepository)
		repo.On("Deactivate", mock.Anything, id).Return(nil)
		missing := uuid.New()
		repo.On("Deactivate", mock.Anything, missing).Return(gorm.ErrRecordNotFound)

		s := NewMovieService(repo, nil)
		assert.NoError(t, s.Deactivate(context.Background(), id))
		assert.ErrorIs(t, s.Deactivate(context.Background(), missing), apperrors.ErrMovieNotFound)
	})
}

func TestImportService_ImportPopular(t *testing.T) {
	admin := uuid.New()

	t.Run("upserts valid movies and skips invalid ones", func(t *testing.T) {
		repo := new(MockMovieRepository)
		source := &MockMovieProvider{enabled: true}
		source.On("PopularCatalog", mock.Anything, 1).Return([]model.Movie{
			{Title: "Fresh", Rating: 7, ExternalIDs: model.ExternalIDs{TMDBID: int64Ptr(1)}},
			{Title: "", ExternalIDs: model.ExternalIDs{TMDBID: int64Ptr(2)}},
		}, nil)
		source.On("PopularCatalog", mock.Anything, 2).Return([]model.Movie{
			{Title: "Known", Rating: 6, ExternalIDs: model.ExternalIDs{TMDBID: int64Ptr(3)}},
		}, nil)
		repo.On("UpsertByTMDBID", mock.Anything, mock.MatchedBy(func(m *model.Movie) bool { return m.Title == "Fresh" })).Return(true, nil)
		repo.On("UpsertByTMDBID", mock.Anything, mock.MatchedBy(func(m *model.Movie) bool { return m.Title == "Known" })).Return(false, nil)
		repo.On("CountActive", mock.Anything).Return(int64(42), nil)

		summary, err := NewImportService(repo, source).ImportPopular(context.Background(), 2, &admin)

		require.NoError(t, err)
		assert.Equal(t, &ImportSummary{Pages: 2, Created: 1, Updated: 1, Skipped: 1, CatalogSize: 42}, summary)
		repo.AssertExpectations(t)
	})

	t.Run("pages are clamped", func(t *testing.T) {
		source := &MockMovieProvider{enabled: true}
		source.On("PopularCatalog", mock.Anything, mock.Anything).Return([]model.Movie{}, nil)

		repo := new(MockMovieRepository)
		repo.On("CountActive", mock.Anything).Return(int64(0), errors.New("db down"))

		summary, err := NewImportService(repo, source).ImportPopular(context.Background(), 500, nil)

		require.NoError(t, err)
		assert.Equal(t, MaxImportPages, summary.Pages)
		source.AssertNumberOfCalls(t, "PopularCatalog", MaxImportPages)
	})

	t.Run("disabled provider", func(t *testing.T) {
		_, err := NewImportService(new(MockMovieRepository), &MockMovieProvider{}).ImportPopular(context.Background(), 1, nil)
		assert.Error(t, err)
	})
}
