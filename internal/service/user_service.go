package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"advancedapi/internal/cache"
	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/repository"
)

const (
	statsCacheKey = "users:stats"
	statsCacheTTL = time.Minute
	activeWindow  = 7 * 24 * time.Hour
)

// UserStats summarizes the user base.
type UserStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	NewUsersToday int64 `json:"newUsersToday"`
}

// UserService exposes user level operations.
type UserService interface {
	Stats(ctx context.Context) (*UserStats, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	now   func() time.Time
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache, now: time.Now}
}

// Stats counts all users, users active within the last seven days and users created
// since local midnight.
func (s *userService) Stats(ctx context.Context) (*UserStats, error) {
	if data, _ := s.cache.Get(ctx, statsCacheKey); data != nil {
		var cached UserStats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	now := s.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var (
		stats UserStats
		err   error
	)
	if stats.TotalUsers, err = s.repo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.ActiveUsers, err = s.repo.CountActiveSince(ctx, now.Add(-activeWindow)); err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	if stats.NewUsersToday, err = s.repo.CountCreatedSince(ctx, midnight); err != nil {
		return nil, fmt.Errorf("count new users: %w", err)
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL)
	}
	return &stats, nil
}

func (s *userService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("set user active: %w", err)
	}
	_ = s.cache.Delete(ctx, statsCacheKey)
	return nil
}
