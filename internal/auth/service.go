package auth

import (
	"context"
	"log/slog"
	"time"
)

// Service wraps authentication business rules.
type Service struct {
	gate   *Gate
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(gate *Gate, repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gate: gate, repo: repo, logger: logger}
}

// Authenticate validates an identifier/credential pair.
func (s *Service) Authenticate(ctx context.Context, identifier, credential string) (Result, error) {
	return s.gate.Authenticate(ctx, identifier, credential)
}

// RegisterSession records the session row. Offline identities have no row to
// reference, so they are skipped.
func (s *Service) RegisterSession(ctx context.Context, id string, identity Identity, expiresAt time.Time, ip, ua string) error {
	if s.repo == nil || identity.ID <= 0 {
		return nil
	}
	return s.repo.CreateSession(ctx, id, identity.ID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	if s.repo == nil || id == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, id)
}

// PurgeExpiredSessions deletes stale session rows.
func (s *Service) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.DeleteExpiredSessions(ctx, now)
}
