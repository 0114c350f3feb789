package session

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SubtitleSeparator joins the parts of User.Subtitle.
const SubtitleSeparator = " · "

// User is the profile snapshot returned by /auth/me. It is replaced
// wholesale, never edited in place.
type User struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	OrgName      string `json:"org_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
}

// Subtitle joins organisation, location and email, skipping empty parts.
func (u User) Subtitle() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.OrgName, u.LocationName, u.Email} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, SubtitleSeparator)
}

// RoleLabel is the text of the role pill, e.g. "Pharmacist" or "Store Manager".
func (u User) RoleLabel() string {
	role := strings.TrimSpace(strings.ReplaceAll(u.Role, "_", " "))
	if role == "" {
		return ""
	}
	return cases.Title(language.English).String(role)
}
