package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/logging"
	"advancedapi/internal/model"
	"advancedapi/internal/repository"
)

const localSearchLimit = 10

// MovieProvider is an external movie database consulted when configured.
type MovieProvider interface {
	Enabled() bool
	Search(ctx context.Context, query string, page int) ([]model.MovieSummary, error)
	Popular(ctx context.Context, page int) ([]model.MovieSummary, error)
	Details(ctx context.Context, id int64) (*model.MovieDetails, error)
}

// SearchResult is a merged local and provider listing. Local entries come first.
type SearchResult struct {
	Movies     []model.MovieSummary
	Page       int
	LocalCount int
}

// PopularResult is the popular listing and where it came from.
type PopularResult struct {
	Movies       []model.MovieSummary
	Page         int
	FromProvider bool
}

// MovieLookup holds exactly one of a catalog entry or a provider record.
type MovieLookup struct {
	Local    *model.MovieView
	Provider *model.MovieDetails
}

// Value returns whichever record was found.
func (l *MovieLookup) Value() interface{} {
	if l.Local != nil {
		return l.Local
	}
	return l.Provider
}

// MovieInput carries the editable fields of a catalog entry.
type MovieInput struct {
	Title               string             `json:"title" validate:"required,max=200"`
	OriginalTitle       string             `json:"originalTitle" validate:"max=200"`
	Overview            string             `json:"overview" validate:"max=2000"`
	ReleaseDate         string             `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Runtime             int                `json:"runtime" validate:"gte=0"`
	Rating              float64            `json:"rating" validate:"gte=0,lte=10"`
	VoteCount           int64              `json:"voteCount" validate:"gte=0"`
	Poster              string             `json:"poster" validate:"omitempty,url"`
	Backdrop            string             `json:"backdrop" validate:"omitempty,url"`
	Genres              []string           `json:"genres"`
	Cast                []model.CastMember `json:"cast" validate:"dive"`
	Crew                []model.CrewMember `json:"crew" validate:"dive"`
	ProductionCompanies []model.Company    `json:"productionCompanies"`
	Budget              decimal.Decimal    `json:"budget"`
	Revenue             decimal.Decimal    `json:"revenue"`
	Status              model.MovieStatus  `json:"status"`
	Language            string             `json:"language" validate:"max=10"`
	Country             string             `json:"country" validate:"max=10"`
	ExternalIDs         model.ExternalIDs  `json:"externalIds"`
	Tags                []string           `json:"tags"`
}

// MovieService implements catalog reads merged with the provider, and admin maintenance.
type MovieService interface {
	Search(ctx context.Context, query string, page int) (*SearchResult, error)
	Popular(ctx context.Context, page int) (*PopularResult, error)
	Get(ctx context.Context, id string) (*MovieLookup, error)
	Create(ctx context.Context, input MovieInput, addedBy uuid.UUID) (*model.Movie, error)
	Update(ctx context.Context, id uuid.UUID, input MovieInput) (*model.Movie, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type movieService struct {
	repo     repository.MovieRepository
	provider MovieProvider
}

// NewMovieService builds a MovieService. provider may report itself disabled.
func NewMovieService(repo repository.MovieRepository, provider MovieProvider) MovieService {
	return &movieService{repo: repo, provider: provider}
}

func (s *movieService) providerEnabled() bool {
	return s.provider != nil && s.provider.Enabled()
}

// Search matches the local catalog first, then appends provider results whose
// provider id is not already present locally.
func (s *movieService) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("كلمة البحث مطلوبة")
	}

	local, err := s.repo.Search(ctx, query, localSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	result := &SearchResult{
		Movies:     make([]model.MovieSummary, 0, len(local)),
		Page:       page,
		LocalCount: len(local),
	}
	known := make(map[string]struct{}, len(local))
	for i := range local {
		result.Movies = append(result.Movies, local[i].Summary())
		if id := local[i].ExternalIDs.TMDBID; id != nil {
			known[strconv.FormatInt(*id, 10)] = struct{}{}
		}
	}

	if !s.providerEnabled() {
		return result, nil
	}
	external, err := s.provider.Search(ctx, query, page)
	if err != nil {
		logging.Warn().Err(err).Str("query", query).Msg("movie provider search failed, serving local results")
		return result, nil
	}
	for _, m := range external {
		if _, dup := known[m.ID]; dup {
			continue
		}
		result.Movies = append(result.Movies, m)
	}
	return result, nil
}

// Popular serves the provider's popular list, or two placeholder movies when the
// provider is absent or failing.
func (s *movieService) Popular(ctx context.Context, page int) (*PopularResult, error) {
	if s.providerEnabled() {
		movies, err := s.provider.Popular(ctx, page)
		if err == nil {
			return &PopularResult{Movies: movies, Page: page, FromProvider: true}, nil
		}
		logging.Warn().Err(err).Msg("movie provider popular failed, serving placeholders")
	}
	return &PopularResult{Movies: placeholderMovies(), Page: page}, nil
}

func placeholderMovies() []model.MovieSummary {
	return []model.MovieSummary{
		{
			ID:          "default_1",
			Title:       "فيلم تجريبي 1",
			Overview:    "هذا فيلم تجريبي لعرض وظائف الـ API",
			ReleaseDate: "2023-01-01",
			Rating:      8.5,
			Genres:      []string{"دراما", "أكشن"},
			Source:      model.SourceDefault,
		},
		{
			ID:          "default_2",
			Title:       "فيلم تجريبي 2",
			Overview:    "فيلم آخر لاختبار النظام",
			ReleaseDate: "2023-06-15",
			Rating:      7.8,
			Genres:      []string{"كوميديا", "رومانسي"},
			Source:      model.SourceDefault,
		},
	}
}

// Get resolves a UUID against the catalog. A numeric id is looked up as a provider id,
// first among catalog entries and then at the provider itself.
func (s *movieService) Get(ctx context.Context, id string) (*MovieLookup, error) {
	if localID, err := uuid.Parse(id); err == nil {
		movie, err := s.repo.FindByID(ctx, localID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrMovieNotFound
			}
			return nil, fmt.Errorf("find movie: %w", err)
		}
		if !movie.IsActive {
			return nil, apperrors.ErrMovieNotFound
		}
		view := movie.View()
		return &MovieLookup{Local: &view}, nil
	}

	tmdbID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || tmdbID <= 0 {
		return nil, apperrors.ErrMovieNotFound
	}

	movie, err := s.repo.FindByTMDBID(ctx, tmdbID)
	switch {
	case err == nil:
		view := movie.View()
		return &MovieLookup{Local: &view}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find movie by provider id: %w", err)
	}

	if !s.providerEnabled() {
		return nil, apperrors.ErrMovieNotFound
	}
	details, err := s.provider.Details(ctx, tmdbID)
	if err != nil {
		logging.Warn().Err(err).Int64("tmdb_id", tmdbID).Msg("movie provider lookup failed")
		return nil, apperrors.ErrMovieNotFound
	}
	return &MovieLookup{Provider: details}, nil
}

func (s *movieService) Create(ctx context.Context, input MovieInput, addedBy uuid.UUID) (*model.Movie, error) {
	movie := &model.Movie{IsActive: true, AddedBy: &addedBy}
	if err := input.applyTo(movie); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	return movie, nil
}

func (s *movieService) Update(ctx context.Context, id uuid.UUID, input MovieInput) (*model.Movie, error) {
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMovieNotFound
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if err := input.applyTo(movie); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, movie); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return movie, nil
}

func (s *movieService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMovieNotFound
		}
		return fmt.Errorf("deactivate movie: %w", err)
	}
	return nil
}

func (in MovieInput) applyTo(m *model.Movie) error {
	m.ReleaseDate = nil
	if in.ReleaseDate != "" {
		d, err := time.ParseInLocation("2006-01-02", in.ReleaseDate, time.Local)
		if err != nil {
			return apperrors.NewValidationError("تاريخ الإصدار غير صحيح")
		}
		m.ReleaseDate = &d
	}
	m.Title = strings.TrimSpace(in.Title)
	m.OriginalTitle = strings.TrimSpace(in.OriginalTitle)
	m.Overview = in.Overview
	m.Runtime = in.Runtime
	m.Rating = in.Rating
	m.VoteCount = in.VoteCount
	m.Poster = in.Poster
	m.Backdrop = in.Backdrop
	m.Genres = in.Genres
	if m.Genres == nil {
		m.Genres = []string{}
	}
	m.Cast = in.Cast
	m.Crew = in.Crew
	m.ProductionCompanies = in.ProductionCompanies
	m.Budget = in.Budget
	m.Revenue = in.Revenue
	m.Status = in.Status
	m.Language = in.Language
	m.Country = in.Country
	m.ExternalIDs = in.ExternalIDs
	m.Tags = in.Tags
	return m.Validate()
}
