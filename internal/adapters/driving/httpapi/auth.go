package httpapi

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// Credential locations checked by the default authenticator.
const (
	TokenHeader   = "X-Auth-Token"
	SessionCookie = "archivist_session"
)

// Resolver turns one kind of request credential into an identity.
type Resolver interface {
	// Name identifies the scheme in logs and on the resolved identity.
	Name() string

	// Resolve returns ok=false when the request does not carry this
	// resolver's credential at all, and an error when it carries an
	// invalid one.
	Resolve(r *http.Request) (id domain.Identity, ok bool, err error)
}

// TokenTable maps API tokens to the role they grant.
type TokenTable map[string]domain.Role

// lookup compares token against every entry in constant time.
func (t TokenTable) lookup(token, scheme string) (domain.Identity, error) {
	var (
		role  domain.Role
		found bool
	)
	for candidate, r := range t {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			role, found = r, true
		}
	}
	if !found {
		return domain.Identity{}, domain.ErrAuthInvalid
	}
	return domain.Identity{Subject: fingerprint(token), Role: role, Scheme: scheme}, nil
}

// fingerprint identifies a token in logs without revealing it.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:6])
}

// BearerResolver reads "Authorization: Bearer <token>".
type BearerResolver struct {
	Tokens TokenTable
}

// Name implements Resolver.
func (BearerResolver) Name() string { return "bearer" }

// Resolve implements Resolver.
func (b BearerResolver) Resolve(r *http.Request) (domain.Identity, bool, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return domain.Identity{}, false, nil
	}
	id, err := b.Tokens.lookup(strings.TrimSpace(token), b.Name())
	return id, true, err
}

// HeaderResolver reads a token from a custom header.
type HeaderResolver struct {
	Header string
	Tokens TokenTable
}

// Name implements Resolver.
func (HeaderResolver) Name() string { return "header" }

// Resolve implements Resolver.
func (h HeaderResolver) Resolve(r *http.Request) (domain.Identity, bool, error) {
	token := strings.TrimSpace(r.Header.Get(h.Header))
	if token == "" {
		return domain.Identity{}, false, nil
	}
	id, err := h.Tokens.lookup(token, h.Name())
	return id, true, err
}

// CookieResolver reads a token from a session cookie set by a fronting
// application.
type CookieResolver struct {
	Cookie string
	Tokens TokenTable
}

// Name implements Resolver.
func (CookieResolver) Name() string { return "cookie" }

// Resolve implements Resolver.
func (c CookieResolver) Resolve(r *http.Request) (domain.Identity, bool, error) {
	cookie, err := r.Cookie(c.Cookie)
	if err != nil || cookie.Value == "" {
		return domain.Identity{}, false, nil
	}
	id, err := c.Tokens.lookup(cookie.Value, c.Name())
	return id, true, err
}

// Authenticator tries resolvers in order; the first one that finds its
// credential decides the outcome.
type Authenticator struct {
	resolvers []Resolver
}

// NewAuthenticator returns the default chain over tokens: bearer header,
// X-Auth-Token header, then session cookie. An empty table disables auth.
func NewAuthenticator(tokens map[string]domain.Role) *Authenticator {
	if len(tokens) == 0 {
		return &Authenticator{}
	}
	table := TokenTable(tokens)
	return NewAuthenticatorWith(
		BearerResolver{Tokens: table},
		HeaderResolver{Header: TokenHeader, Tokens: table},
		CookieResolver{Cookie: SessionCookie, Tokens: table},
	)
}

// NewAuthenticatorWith builds an authenticator from explicit resolvers.
func NewAuthenticatorWith(resolvers ...Resolver) *Authenticator {
	return &Authenticator{resolvers: resolvers}
}

// Enabled reports whether any resolver is configured.
func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.resolvers) > 0
}

// Authenticate resolves the caller. Without resolvers everyone is Anonymous.
func (a *Authenticator) Authenticate(r *http.Request) (domain.Identity, error) {
	if !a.Enabled() {
		return domain.Anonymous, nil
	}
	for _, res := range a.resolvers {
		id, ok, err := res.Resolve(r)
		if !ok {
			continue
		}
		if err != nil {
			return domain.Identity{}, err
		}
		return id, nil
	}
	return domain.Identity{}, domain.ErrAuthRequired
}

type identityKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by the auth middleware.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}
