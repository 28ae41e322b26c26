package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"advancedapi/internal/logging"
	"advancedapi/internal/model"
	"advancedapi/internal/repository"
)

// MaxImportPages bounds a single import run.
const MaxImportPages = 20

// CatalogSource lists provider movies shaped as catalog entries.
type CatalogSource interface {
	Enabled() bool
	PopularCatalog(ctx context.Context, page int) ([]model.Movie, error)
}

// ImportSummary reports the outcome of an import run.
type ImportSummary struct {
	Pages   int `json:"pages"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	// CatalogSize is the number of active catalog movies after the run.
	CatalogSize int64 `json:"catalogSize"`
}

// ImportService copies provider movies into the local catalog.
type ImportService interface {
	ImportPopular(ctx context.Context, pages int, addedBy *uuid.UUID) (*ImportSummary, error)
}

type importService struct {
	repo   repository.MovieRepository
	source CatalogSource
}

// NewImportService builds an ImportService.
func NewImportService(repo repository.MovieRepository, source CatalogSource) ImportService {
	return &importService{repo: repo, source: source}
}

// ImportPopular upserts the first pages of the provider's popular list, keyed by
// provider id. Entries that fail validation are skipped.
func (s *importService) ImportPopular(ctx context.Context, pages int, addedBy *uuid.UUID) (*ImportSummary, error) {
	if s.source == nil || !s.source.Enabled() {
		return nil, fmt.Errorf("import popular: movie provider not configured")
	}
	if pages < 1 {
		pages = 1
	}
	if pages > MaxImportPages {
		pages = MaxImportPages
	}

	summary := &ImportSummary{}
	for page := 1; page <= pages; page++ {
		movies, err := s.source.PopularCatalog(ctx, page)
		if err != nil {
			return summary, fmt.Errorf("fetch popular page %d: %w", page, err)
		}
		summary.Pages++

		for i := range movies {
			movie := &movies[i]
			movie.AddedBy = addedBy
			if err := movie.Validate(); err != nil {
				logging.Debug().Err(err).Str("title", movie.Title).Msg("skipping invalid provider movie")
				summary.Skipped++
				continue
			}
			created, err := s.repo.UpsertByTMDBID(ctx, movie)
			if err != nil {
				return summary, fmt.Errorf("upsert movie %q: %w", movie.Title, err)
			}
			if created {
				summary.Created++
			} else {
				summary.Updated++
			}
		}
	}

	size, err := s.repo.CountActive(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("count catalog after import")
	}
	summary.CatalogSize = size
	return summary, nil
}
