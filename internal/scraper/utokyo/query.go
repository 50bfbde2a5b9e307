package utokyo

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
)

const (
	searchPath = "result"
	detailPath = "detail"
)

// facetKeys fixes the key order of the facet object.
var facetKeys = [...]string{
	"uwide_cross_program_codes",
	"grades_codes",
	"semester_codes",
	"period_codes",
	"wday_codes",
	"course_language_codes",
	"operational_experience_flag",
	"subject_code",
}

// BuildSearchQuery renders params as the query of the search endpoint.
// Faculties become repeated faculty_id values; the remaining filters are
// packed into the compact JSON "facet" object.
func BuildSearchQuery(params catalog.SearchParams, page int) url.Values {
	q := url.Values{}
	q.Set("type", string(params.InstitutionOrDefault()))
	q.Set("page", strconv.Itoa(page))
	if params.Keyword != "" {
		q.Set("q", params.Keyword)
	}
	for _, f := range params.Faculties {
		q.Add("faculty_id", strconv.Itoa(int(f)))
	}
	if facet := buildFacet(params); facet != "" {
		q.Set("facet", facet)
	}
	return q
}

func buildFacet(params catalog.SearchParams) string {
	values := map[string][]string{
		"uwide_cross_program_codes":   params.CrossPrograms,
		"grades_codes":                mapStrings(params.Grades, strconv.Itoa),
		"semester_codes":              mapStrings(params.Semesters, func(s catalog.Semester) string { return string(s) }),
		"period_codes":                mapStrings(params.Periods, func(p int) string { return strconv.Itoa(p - 1) }),
		"wday_codes":                  mapStrings(params.Weekdays, func(w catalog.Weekday) string { return strconv.Itoa(int(w)*100 + 1000) }),
		"course_language_codes":       params.Languages,
		"operational_experience_flag": mapStrings(params.PracticalExperience, pythonBool),
		"subject_code":                params.SubjectNDC,
	}

	var b bytes.Buffer
	for _, key := range facetKeys {
		vs := values[key]
		if len(vs) == 0 {
			continue
		}
		if b.Len() == 0 {
			b.WriteByte('{')
		} else {
			b.WriteByte(',')
		}
		writeJSON(&b, key)
		b.WriteByte(':')
		writeJSON(&b, vs)
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteByte('}')
	return b.String()
}

// writeJSON appends compact JSON without HTML escaping.
func writeJSON(b *bytes.Buffer, v any) {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	// Strings and string slices always encode
	_ = enc.Encode(v)
	// Encode terminates with a newline
	b.Truncate(b.Len() - 1)
}

func pythonBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func mapStrings[T any](in []T, fn func(T) string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// SearchURL returns the URL of one search result page.
func (c *Catalog) SearchURL(params catalog.SearchParams, page int) string {
	return c.baseURL + searchPath + "?" + BuildSearchQuery(params, page).Encode()
}

// DetailURL returns the URL of a course detail page.
func (c *Catalog) DetailURL(code string, year int) string {
	q := url.Values{}
	q.Set("code", code)
	q.Set("year", strconv.Itoa(year))
	return c.baseURL + detailPath + "?" + q.Encode()
}
