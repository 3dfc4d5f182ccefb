//go:generate mockgen -source ./resolver.go -destination=./mocks/resolver.go -package=mock_identity
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/discrescue/admin/internal/access"
	"gitlab.com/discrescue/admin/internal/repository"
)

// Resolver turns request credentials into a principal. A request without
// usable credentials resolves to an anonymous principal, not an error; an
// error means the credential store could not be consulted.
type Resolver interface {
	Resolve(r *http.Request) (Principal, error)
}

type UserStore interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

type Chain []Resolver

func (c Chain) Resolve(r *http.Request) (Principal, error) {
	for _, res := range c {
		p, err := res.Resolve(r)
		if err != nil {
			return Principal{}, err
		}
		if p.Caller.Authenticated {
			return p, nil
		}
	}
	return Principal{}, nil
}

type JWTResolver struct {
	secret []byte
	cookie string
	now    func() time.Time
}

func NewJWTResolver(secret, cookie string, now func() time.Time) *JWTResolver {
	if now == nil {
		now = time.Now
	}
	return &JWTResolver{secret: []byte(secret), cookie: cookie, now: now}
}

type appMetadata struct {
	Role string `json:"role"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email"`
	AppMetadata appMetadata `json:"app_metadata"`
}

func (j *JWTResolver) token(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if j.cookie != "" {
		if c, err := r.Cookie(j.cookie); err == nil {
			return strings.TrimSpace(c.Value)
		}
	}
	return ""
}

func (j *JWTResolver) Resolve(r *http.Request) (Principal, error) {
	if len(j.secret) == 0 {
		return Principal{}, nil
	}
	raw := j.token(r)
	if raw == "" {
		return Principal{}, nil
	}

	claims, err := j.parse(raw)
	if err != nil {
		return Principal{}, nil
	}

	return Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Caller:  access.Authenticated(access.Role(claims.AppMetadata.Role)),
	}, nil
}

func (j *JWTResolver) parse(raw string) (*accessClaims, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}
	return &claims, nil
}

type BasicResolver struct {
	users UserStore
}

func NewBasicResolver(users UserStore) *BasicResolver {
	return &BasicResolver{users: users}
}

func (b *BasicResolver) Resolve(r *http.Request) (Principal, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return Principal{}, nil
	}

	role, err := b.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, repository.ErrBadCredentials) {
			return Principal{}, nil
		}
		return Principal{}, fmt.Errorf("authenticate %s: %w", username, err)
	}

	return Principal{
		Subject: username,
		Caller:  access.Authenticated(access.Role(role)),
	}, nil
}
