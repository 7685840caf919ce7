package rbac

import (
	"context"
	"strings"
)

type Checker struct {
	RolePermissions map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	perms, ok := c.RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Email   string
	Role    string
}

// Policy decides whether identity may perform action.
type Policy interface {
	IsAuthorized(identity Principal, action string) bool
}

// AllowListPolicy grants role permissions, except that the admin role only
// counts for emails on the allow-list. Anyone else claiming admin is
// treated as a student.
type AllowListPolicy struct {
	Checker *Checker
	admins  map[string]struct{}
}

func NewAllowListPolicy(c *Checker, adminEmails []string) *AllowListPolicy {
	if c == nil {
		c = NewChecker(nil)
	}
	m := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		m[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AllowListPolicy{Checker: c, admins: m}
}

func (p *AllowListPolicy) IsAdmin(email string) bool {
	_, ok := p.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (p *AllowListPolicy) EffectiveRole(id Principal) string {
	if id.Role == RoleAdmin && !p.IsAdmin(id.Email) {
		return RoleStudent
	}
	return id.Role
}

func (p *AllowListPolicy) IsAuthorized(id Principal, action string) bool {
	if id.Subject == "" {
		return false
	}
	return p.Checker.Has(p.EffectiveRole(id), action)
}

// ---- principal in context ----

type ctxKey struct{}

var ctxKeyPrincipal = ctxKey{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}
