package storage

import "strings"

// likeEscaper escapes the LIKE wildcards % and _ with backslash.
// Queries must use ESCAPE '\'.
var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// sanitizeSearchTerm makes term match literally inside a LIKE pattern.
// URLs routinely contain % (escaped facets) and _ (facet keys).
func sanitizeSearchTerm(term string) string {
	return likeEscaper.Replace(term)
}
