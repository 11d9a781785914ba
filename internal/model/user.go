package model

import (
	"database/sql"
	"strings"
	"time"
)

// Organization tags assigned at signup. OrgTagAdmin marks research
// analyst accounts, OrgTagOther is the catch-all.
const (
	OrgTagAdmin = "admin"
	OrgTagOther = "other"
)

// User represents an exam platform account.
type User struct {
	ID           int64          `json:"-"`
	PublicID     string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // Never expose in JSON
	FullName     string         `json:"full_name"`
	OrgTag       string         `json:"org_tag"`
	IsAdmin      bool           `json:"admin"`
	PracticeID   sql.NullString `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ClassifyOrganization derives the organization tag for an email address.
// Admin allowlist membership wins, then a match on the configured
// organization domain, then OrgTagOther. The allowlist and domain are
// injected from configuration; there is no hardcoded email list.
func ClassifyOrganization(email string, adminEmails []string, orgDomain, orgTag string) string {
	if email == "" {
		return OrgTagOther
	}
	lower := strings.ToLower(email)
	for _, admin := range adminEmails {
		if lower == strings.ToLower(admin) {
			return OrgTagAdmin
		}
	}
	if orgDomain != "" && strings.HasSuffix(lower, "@"+strings.ToLower(orgDomain)) {
		return orgTag
	}
	return OrgTagOther
}
