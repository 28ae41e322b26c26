package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/metrics"
	"advancedapi/internal/model"
	"advancedapi/internal/repository"
)

// SessionService resolves verified credentials to active users and accounts their usage.
type SessionService interface {
	// Authenticate loads the user, rejects missing or inactive accounts and records
	// one request against its usage counters. Credential problems come back as
	// apperrors.ErrInvalidToken or apperrors.ErrAccountInactive; anything else is a
	// storage failure.
	Authenticate(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type sessionService struct {
	repo repository.UserRepository
	now  func() time.Time
}

// NewSessionService builds a SessionService.
func NewSessionService(repo repository.UserRepository) SessionService {
	return &sessionService{repo: repo, now: time.Now}
}

func (s *sessionService) Authenticate(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}

	now := s.now()
	if err := s.repo.RecordRequest(ctx, user.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		metrics.UsageAccountingFailures.Inc()
		return nil, fmt.Errorf("record usage: %w", err)
	}
	user.APIUsage.Record(now)
	user.LastActive = now

	return user, nil
}
