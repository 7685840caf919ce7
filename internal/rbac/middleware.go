package rbac

import (
	"net/http"
)

// Require enforces a single permission.
func Require(p Policy, perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := PrincipalFromContext(r.Context())
			if !ok || !p.IsAuthorized(id, perm) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny enforces that the caller has at least one of the permissions.
func RequireAny(p Policy, perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := PrincipalFromContext(r.Context())
			if ok {
				for _, perm := range perms {
					if p.IsAuthorized(id, perm) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}
