package iam

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/aylalah/ag-rms-sub000/internal/apperr"
	"github.com/aylalah/ag-rms-sub000/internal/telemetry"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var casbinModelContent string

// Rule declares who may invoke an operation: any authenticated principal,
// or an explicit set of roles.
type Rule struct {
	All   bool
	Roles []string
}

// AllowAll is the sentinel rule admitting any authenticated principal.
var AllowAll = Rule{All: true}

// Allow builds a rule admitting exactly the given roles.
func Allow(roles ...string) Rule {
	return Rule{Roles: roles}
}

// Policy approves or rejects operations based on the principal's role.
//
// Rules are registered once at service construction (one policy row per
// role/table/action triple; the AllowAll sentinel becomes a wildcard
// subject) and evaluated through a Casbin enforcer with an embedded model.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy creates an empty policy; entity descriptors register their rules.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	return &Policy{enforcer: enforcer}, nil
}

// Register adds the policy rows for one table/action pair.
func (p *Policy) Register(table, action string, rule Rule) error {
	if rule.All {
		if _, err := p.enforcer.AddPolicy("*", table, action); err != nil {
			return fmt.Errorf("register policy %s/%s: %w", table, action, err)
		}
		return nil
	}
	for _, role := range rule.Roles {
		if _, err := p.enforcer.AddPolicy(role, table, action); err != nil {
			return fmt.Errorf("register policy %s/%s/%s: %w", role, table, action, err)
		}
	}
	return nil
}

// Check gates an operation. The principal must come from the request
// context; a missing principal is Unauthenticated, a role outside the
// registered rule is Forbidden. Must run before any state is read for a
// mutation or returned for a read.
func (p *Policy) Check(ctx context.Context, table, action string) (*Principal, error) {
	principal, ok := PrincipalFrom(ctx)
	if !ok {
		return nil, apperr.New(apperr.KindUnauthenticated, "authentication required")
	}

	allowed, err := p.enforcer.Enforce(principal.Role, table, action)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "access check failed")
	}
	if !allowed {
		telemetry.AccessDeniedTotal.WithLabelValues(table).Inc()
		return nil, apperr.New(apperr.KindForbidden, "you do not have permission to %s %s", action, table)
	}
	return principal, nil
}
