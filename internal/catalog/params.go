package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SearchParams is a search query. Every filter is an ordered slice; an empty
// slice leaves the filter unset. Values inside one filter are AND-combined by
// the website, not OR-combined.
type SearchParams struct {
	Keyword     string      `json:"keyword,omitempty"`
	Institution Institution `json:"institution,omitempty"` // Defaults to InstitutionAll
	Faculties   []Faculty   `json:"faculties,omitempty"`
	Grades      []int       `json:"grades,omitempty"`
	Semesters   []Semester  `json:"semesters,omitempty"`
	Weekdays    []Weekday   `json:"weekdays,omitempty"`
	Periods     []int       `json:"periods,omitempty"` // 1-based
	Languages   []string    `json:"languages,omitempty"`

	// CrossPrograms are university-wide cross-disciplinary program codes.
	CrossPrograms []string `json:"cross_programs,omitempty"`

	// PracticalExperience filters on courses taught by instructors with
	// practical work experience. Specifying both true and false is valid
	// but matches nothing useful.
	PracticalExperience []bool `json:"practical_experience,omitempty"`

	// SubjectNDC are Nippon Decimal Classification subject codes.
	SubjectNDC []string `json:"subject_ndc,omitempty"`
}

// InstitutionOrDefault returns the institution, InstitutionAll when unset.
func (p SearchParams) InstitutionOrDefault() Institution {
	if p.Institution == "" {
		return InstitutionAll
	}
	return p.Institution
}

// ID returns a deterministic identifier of the full parameter set:
// the hex SHA-256 of its canonical JSON encoding.
// It is used as cache key and default archive filename.
func (p SearchParams) ID() string {
	p.Institution = p.InstitutionOrDefault()
	// Struct fields encode in declaration order, so the encoding is canonical.
	b, err := json.Marshal(p)
	if err != nil {
		// Only invalid weekday values can fail to encode
		b = fmt.Appendf(nil, "%#v", p)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
