package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	v1 "github.com/stacklok/envsync/internal/api/v1"
)

// RFC 6750 Section 3 error codes
const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeInvalidToken   = "invalid_token"
)

const defaultRealm = "envsync"

var (
	errMissingToken        = errors.New("missing bearer token")
	errMissingSubject      = errors.New("token has no subject")
	errMissingOrganization = errors.New("token has no organization claim")
)

// Identity is the authenticated caller of a request
type Identity struct {
	OrganizationID string
	UserID         string
}

// jwtMiddleware authenticates HMAC signed bearer tokens and rewrites the
// identity headers from the token claims
type jwtMiddleware struct {
	secret   []byte
	orgClaim string
	realm    string
	parser   *jwt.Parser
}

type jwtSettings struct {
	secret   []byte
	issuer   string
	audience string
	orgClaim string
	realm    string
}

func newJWTMiddleware(s jwtSettings) (*jwtMiddleware, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if s.realm == "" {
		s.realm = defaultRealm
	}
	if s.orgClaim == "" {
		s.orgClaim = "org"
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(s.audience))
	}

	return &jwtMiddleware{
		secret:   s.secret,
		orgClaim: s.orgClaim,
		realm:    s.realm,
		parser:   jwt.NewParser(parserOpts...),
	}, nil
}

// Middleware returns an HTTP middleware function that performs authentication.
func (m *jwtMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			slog.WarnContext(r.Context(), "Token extraction failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, http.StatusUnauthorized, errorCodeInvalidRequest, "missing or malformed authorization header")
			return
		}

		identity, err := m.validateToken(token)
		if err != nil {
			slog.WarnContext(r.Context(), "Token validation failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, http.StatusUnauthorized, errorCodeInvalidToken, "token validation failed")
			return
		}

		slog.DebugContext(r.Context(), "Authentication successful",
			"organization", identity.OrganizationID,
			"subject", identity.UserID,
			"path", r.URL.Path)

		r = r.Clone(r.Context())
		r.Header.Set(v1.OrganizationHeader, identity.OrganizationID)
		r.Header.Set(v1.UserHeader, identity.UserID)
		next.ServeHTTP(w, r)
	})
}

func (m *jwtMiddleware) validateToken(raw string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return Identity{}, err
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return Identity{}, err
	}
	if subject == "" {
		return Identity{}, errMissingSubject
	}
	org, _ := claims[m.orgClaim].(string)
	if org == "" {
		return Identity{}, fmt.Errorf("%w %q", errMissingOrganization, m.orgClaim)
	}
	return Identity{OrganizationID: org, UserID: subject}, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// sanitizeHeaderValue removes characters that could enable header injection attacks.
func sanitizeHeaderValue(s string) string {
	if !strings.ContainsAny(s, "\r\n\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeError writes a JSON error response with an RFC 6750 WWW-Authenticate challenge
func (m *jwtMiddleware) writeError(w http.ResponseWriter, status int, errCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s", error="%s", error_description="%s"`,
		sanitizeHeaderValue(m.realm), errCode, sanitizeHeaderValue(description)))
	w.WriteHeader(status)

	resp := struct {
		Error string `json:"error"`
	}{
		Error: description,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// WrapWithPublicPaths wraps an auth middleware to bypass authentication for public paths.
func WrapWithPublicPaths(
	authMw func(http.Handler) http.Handler,
	publicPaths []string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authWrappedNext := authMw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}
			authWrappedNext.ServeHTTP(w, r)
		})
	}
}
