package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/shared"
)

// Gate runs an ordered provider chain. Providers that need the store are
// skipped when the startup probe found it unreachable. A provider answering
// ErrUnknownIdentity or ErrStoreUnavailable hands over to the next one; any
// other failure ends the attempt.
type Gate struct {
	providers []CredentialProvider
	health    db.Health
	logger    *slog.Logger
}

// NewGate constructs a Gate over providers, tried in order.
func NewGate(health db.Health, logger *slog.Logger, providers ...CredentialProvider) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{providers: providers, health: health, logger: logger}
}

// Authenticate returns the identity for a valid pair. Every failure is
// reported as shared.ErrInvalidCredentials.
func (g *Gate) Authenticate(ctx context.Context, identifier, credential string) (Result, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || credential == "" {
		return Result{}, shared.ErrInvalidCredentials
	}

	for _, p := range g.providers {
		if p.NeedsStore() && !g.health.Reachable() {
			continue
		}
		identity, err := p.Verify(ctx, identifier, credential)
		if err == nil {
			g.logger.Info("login succeeded", slog.String("provider", p.Name()), slog.Int64("user_id", identity.ID), slog.String("role", identity.Role.String()))
			return Result{Identity: identity, Provider: p.Name()}, nil
		}
		if errors.Is(err, ErrUnknownIdentity) {
			continue
		}
		if errors.Is(err, shared.ErrStoreUnavailable) {
			g.logger.Warn("credential store unavailable, trying next provider", slog.String("provider", p.Name()), slog.Any("error", err))
			continue
		}
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			g.logger.Error("credential provider failed", slog.String("provider", p.Name()), slog.Any("error", err))
		}
		break
	}

	g.logger.Info("login rejected")
	return Result{}, shared.ErrInvalidCredentials
}
