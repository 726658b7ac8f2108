package iam

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Claims are the JWT claims carried by session tokens.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Decoder turns an opaque bearer token into a Principal.
//
// Tokens are HMAC-signed JWTs. Decoded principals are cached in an LRU keyed
// by the raw token so a burst of requests with the same session token does
// not re-verify the signature each time. Cached entries carry the token's
// expiry; a hit past that instant is evicted and rejected, so the cache can
// never outlive the token.
type Decoder struct {
	secret []byte
	ttl    time.Duration
	cache  *lru.Cache[string, cachedPrincipal]
}

type cachedPrincipal struct {
	principal *Principal
	expiresAt time.Time
}

// NewDecoder creates a token decoder. cacheSize bounds the principal cache.
func NewDecoder(secret string, ttl time.Duration, cacheSize int) (*Decoder, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, cachedPrincipal](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create principal cache: %w", err)
	}
	return &Decoder{secret: []byte(secret), ttl: ttl, cache: cache}, nil
}

// Decode resolves a raw token to a Principal. Any parse, signature, or
// expiry failure is reported as a single opaque error; callers map it to
// an unauthenticated result.
func (d *Decoder) Decode(token string) (*Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	if entry, ok := d.cache.Get(token); ok {
		if time.Now().Before(entry.expiresAt) {
			return entry.principal, nil
		}
		d.cache.Remove(token)
		return nil, fmt.Errorf("token expired")
	}

	claims, err := d.parse(token)
	if err != nil {
		return nil, err
	}

	p := &Principal{
		ID:    claims.Subject,
		Role:  claims.Role,
		Email: claims.Email,
		Name:  claims.Name,
	}
	if p.ID == "" || p.Role == "" {
		return nil, fmt.Errorf("token missing subject or role")
	}

	// Tokens without an expiry are valid but never cached; the cache eviction
	// contract needs a concrete instant to compare against.
	if claims.ExpiresAt != nil {
		d.cache.Add(token, cachedPrincipal{principal: p, expiresAt: claims.ExpiresAt.Time})
	}
	return p, nil
}

// Sign issues a token for the given principal. Used by the login flow.
func (d *Decoder) Sign(p *Principal) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role:  p.Role,
		Email: p.Email,
		Name:  p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (d *Decoder) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return d.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
