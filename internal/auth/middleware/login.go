package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-labrank/internal/rbac"
)

type LoginOptions struct {
	Admins        *rbac.AllowListPolicy
	AdminPassHash string // bcrypt
	// AllowedEmailDomain limits student logins; empty allows any domain.
	AllowedEmailDomain string
}

// NormalizeEmail lowercases and trims; the result doubles as the student id.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (o LoginOptions) domainAllowed(email string) bool {
	if o.AllowedEmailDomain == "" {
		return true
	}
	return strings.HasSuffix(email, "@"+o.AllowedEmailDomain)
}

// POST /auth/login  { "email": "...", "password": "..." }
//
// Allow-listed admins authenticate against the configured bcrypt hash.
// Students use the offline convention password == local part of the email;
// online deployments front this with the campus identity provider.
func LoginHandler(a *AuthService, opts LoginOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		email := NormalizeEmail(req.Email)
		at := strings.LastIndex(email, "@")
		if at <= 0 || at == len(email)-1 {
			http.Error(w, "email required", http.StatusBadRequest)
			return
		}

		role := rbac.RoleStudent
		switch {
		case opts.Admins != nil && opts.Admins.IsAdmin(email):
			if bcrypt.CompareHashAndPassword([]byte(opts.AdminPassHash), []byte(req.Password)) != nil {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			role = rbac.RoleAdmin
		case !opts.domainAllowed(email):
			http.Error(w, "university email required", http.StatusForbidden)
			return
		case req.Password != email[:at]:
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		tok, err := a.IssueJWT(email, email, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}
