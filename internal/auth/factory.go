package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stacklok/envsync/internal/config"
)

// NewAuthMiddleware creates the identity middleware for the configured mode.
// Header mode passes requests through unchanged.
func NewAuthMiddleware(cfg *config.AuthConfig) (func(http.Handler) http.Handler, error) {
	if cfg == nil {
		cfg = &config.AuthConfig{}
	}

	switch cfg.GetMode() {
	case config.AuthModeHeaders:
		slog.Warn("Trusting identity headers from the fronting gateway")
		return passthroughMiddleware, nil
	case config.AuthModeJWT:
		return createJWTMiddleware(cfg.JWT)
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}

func createJWTMiddleware(cfg *config.JWTConfig) (func(http.Handler) http.Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("jwt configuration is required in jwt mode")
	}
	secret, err := cfg.GetSecret()
	if err != nil {
		return nil, err
	}

	m, err := newJWTMiddleware(jwtSettings{
		secret:   secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		orgClaim: cfg.GetOrganizationClaim(),
		realm:    cfg.Realm,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create jwt middleware: %w", err)
	}

	slog.Info("JWT authentication enabled", "issuer", cfg.Issuer, "audience", cfg.Audience)
	return WrapWithPublicPaths(m.Middleware, DefaultPublicPaths), nil
}

func passthroughMiddleware(next http.Handler) http.Handler {
	return next
}
