// Package delta compares two crawls of the catalogue by timetable code.
package delta

import (
	"reflect"
	"slices"
	"strings"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	"github.com/garyellow/ut-course-catalog-go/internal/export"
	"github.com/garyellow/ut-course-catalog-go/internal/sliceutil"
)

// Change is a course present in both crawls whose exported columns differ.
type Change struct {
	TimetableCode string   `json:"timetable_code"`
	Title         string   `json:"title"`
	Columns       []string `json:"columns"` // CSV column names in column order
}

// Report lists the differences between two crawls, each list sorted by
// timetable code.
type Report struct {
	Added   []catalog.Details `json:"added"`
	Removed []catalog.Details `json:"removed"`
	Changed []Change          `json:"changed"`
}

// Empty reports whether the crawls hold the same courses with the same values.
func (r *Report) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

func timetableCode(d catalog.Details) string { return d.TimetableCode }

// Compare matches before and after by timetable code. A code listed twice in
// one crawl counts once, with its first details.
func Compare(before, after []catalog.Details) *Report {
	r := &Report{}

	previous := sliceutil.IndexBy(before, timetableCode)
	for _, d := range sliceutil.Deduplicate(after, timetableCode) {
		old, ok := previous[d.TimetableCode]
		if !ok {
			r.Added = append(r.Added, d)
			continue
		}
		if cols := diffColumns(export.NewRow(&old), export.NewRow(&d)); len(cols) > 0 {
			r.Changed = append(r.Changed, Change{
				TimetableCode: d.TimetableCode,
				Title:         d.Title,
				Columns:       cols,
			})
		}
	}

	current := sliceutil.IndexBy(after, timetableCode)
	for _, d := range sliceutil.Deduplicate(before, timetableCode) {
		if _, ok := current[d.TimetableCode]; !ok {
			r.Removed = append(r.Removed, d)
		}
	}

	byCode := func(a, b catalog.Details) int { return strings.Compare(a.TimetableCode, b.TimetableCode) }
	slices.SortFunc(r.Added, byCode)
	slices.SortFunc(r.Removed, byCode)
	slices.SortFunc(r.Changed, func(a, b Change) int { return strings.Compare(a.TimetableCode, b.TimetableCode) })
	return r
}

var rowType = reflect.TypeFor[export.Row]()

// diffColumns returns the CSV column names whose values differ.
// Every Row field is a comparable scalar.
func diffColumns(a, b *export.Row) []string {
	va, vb := reflect.ValueOf(a).Elem(), reflect.ValueOf(b).Elem()
	var cols []string
	for i := range rowType.NumField() {
		if va.Field(i).Interface() != vb.Field(i).Interface() {
			cols = append(cols, rowType.Field(i).Tag.Get("csv"))
		}
	}
	return cols
}
