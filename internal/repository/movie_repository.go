package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"advancedapi/internal/model"
)

// MovieRepository defines catalog persistence operations.
type MovieRepository interface {
	Create(ctx context.Context, movie *model.Movie) error
	Update(ctx context.Context, movie *model.Movie) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Movie, error)
	FindByTMDBID(ctx context.Context, tmdbID int64) (*model.Movie, error)
	Search(ctx context.Context, query string, limit int) ([]model.Movie, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpsertByTMDBID(ctx context.Context, movie *model.Movie) (created bool, err error)
	CountActive(ctx context.Context) (int64, error)
}

type movieRepository struct {
	db *gorm.DB
}

// NewMovieRepository builds a GORM-backed catalog repository.
func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

func (r *movieRepository) Create(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Create(movie).Error
}

func (r *movieRepository) Update(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Save(movie).Error
}

func (r *movieRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	var movie model.Movie
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&movie).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) FindByTMDBID(ctx context.Context, tmdbID int64) (*model.Movie, error) {
	var movie model.Movie
	if err := r.db.WithContext(ctx).
		Where("tmdb_id = ? AND is_active = ?", tmdbID, true).
		First(&movie).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the query case-insensitively against title and overview of active
// movies, best rated first.
func (r *movieRepository) Search(ctx context.Context, query string, limit int) ([]model.Movie, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("LOWER(title) LIKE ? OR LOWER(overview) LIKE ?", pattern, pattern).
		Order("rating DESC").
		Order("popularity DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// Deactivate soft-deletes a movie. UpdateColumns skips the save hooks so the partial
// model is not validated.
func (r *movieRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Movie{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Movie{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// UpsertByTMDBID inserts the movie, or refreshes the existing row that carries the same
// provider id. Local identity and ownership are preserved on update.
func (r *movieRepository) UpsertByTMDBID(ctx context.Context, movie *model.Movie) (bool, error) {
	if movie.ExternalIDs.TMDBID == nil {
		return true, r.Create(ctx, movie)
	}

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Movie
		err := tx.Where("tmdb_id = ?", *movie.ExternalIDs.TMDBID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(movie).Error
		}
		if err != nil {
			return err
		}
		movie.ID = existing.ID
		movie.AddedBy = existing.AddedBy
		movie.CreatedAt = existing.CreatedAt
		return tx.Save(movie).Error
	})
	return created, err
}

func (r *movieRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
