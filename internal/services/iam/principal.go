// Package iam provides the principal resolver, the access policy, and the
// contact login flow.
package iam

import (
	"context"
	"encoding/json"
)

// Principal represents the authenticated actor performing an operation.
//
// It is immutable after construction, derived per request from a bearer
// token, and never persisted. Lifetime is one request.
type Principal struct {
	// ID references the backing contact or staff record.
	ID string `json:"id"`

	// Role is the single role this actor holds (admin, hod, analyst, client).
	Role string `json:"role"`

	// Email and Name are carried for audit serialization and email copy.
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Serialize renders the principal as the JSON string stored in audit records.
func (p *Principal) Serialize() string {
	data, err := json.Marshal(p)
	if err != nil {
		return p.ID
	}
	return string(data)
}

// Known roles. The role model is flat: one role per principal.
const (
	RoleAdmin   = "admin"
	RoleHOD     = "hod"
	RoleAnalyst = "analyst"
	RoleClient  = "client"
)

type principalKey struct{}

// WithPrincipal stores the principal in the request context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the principal from the context, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
