// Package export flattens course details into tabular rows.
//
// Enumerations are written as their labels, the common code is expanded
// into one column per decoded position, and the grading text is expanded
// into one boolean column per assessment method.
package export

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
)

// Row is one course as exported to CSV.
type Row struct {
	TimetableCode       string  `csv:"時間割コード"`
	CommonCode          string  `csv:"共通科目コード"`
	Title               string  `csv:"コース名"`
	Lecturer            string  `csv:"教員"`
	Semesters           string  `csv:"学期"`
	Periods             string  `csv:"曜限"`
	Classroom           string  `csv:"教室"`
	Credits             float64 `csv:"単位数"`
	OtherFacultyAllowed bool    `csv:"他学部履修可"`
	InstructionLanguage string  `csv:"講義使用言語"`
	PracticalExperience bool    `csv:"実務経験のある教員による授業科目"`
	OfferingFaculty     string  `csv:"開講所属"`
	Aim                 string  `csv:"ねらい"`
	Schedule            string  `csv:"授業計画"`
	TeachingMethod      string  `csv:"授業の方法"`
	Grading             string  `csv:"成績評価方法"`
	Textbooks           string  `csv:"教科書"`
	References          string  `csv:"参考書"`
	Notes               string  `csv:"履修上の注意"`

	// Common code facets
	Institution     string `csv:"課程"`
	Faculty         string `csv:"学部"`
	DepartmentName  string `csv:"学科"`
	DepartmentCode  string `csv:"学科コード"`
	Level           string `csv:"レベル"`
	ReferenceNumber string `csv:"整理番号"`
	ClassForm       string `csv:"授業形態"`
	CodeLanguage    string `csv:"講義使用言語_"`
	LargeCategory   string `csv:"大分類"`
	MiddleCategory  string `csv:"中分類"`
	SmallCategory   string `csv:"小分類"`

	// Grading methods
	Midterm      bool `csv:"中間"`
	Final        bool `csv:"期末"`
	Quiz         bool `csv:"小テスト"`
	Exercise     bool `csv:"演習"`
	Assignment   bool `csv:"課題"`
	Report       bool `csv:"レポート"`
	Presentation bool `csv:"発表"`
	Attendance   bool `csv:"出席"`
}

// NewRow flattens d.
func NewRow(d *catalog.Details) *Row {
	r := &Row{
		TimetableCode:       d.TimetableCode,
		CommonCode:          d.CommonCode.String(),
		Title:               d.Title,
		Lecturer:            d.Lecturer,
		Semesters:           JoinSemesters(d.Semesters),
		Periods:             JoinPeriods(d.Periods),
		Classroom:           d.Classroom,
		Credits:             d.CreditsValue(),
		OtherFacultyAllowed: d.OtherFacultyAllowed,
		InstructionLanguage: d.InstructionLanguage,
		PracticalExperience: d.PracticalExperience,
		OfferingFaculty:     d.OfferingFaculty.Label(),
		Aim:                 d.Aim,
		Schedule:            deref(d.Schedule),
		TeachingMethod:      deref(d.TeachingMethod),
		Grading:             deref(d.Grading),
		Textbooks:           deref(d.Textbooks),
		References:          deref(d.References),
		Notes:               deref(d.Notes),
	}

	if !d.CommonCode.IsZero() {
		f := d.CommonCode.Facets()
		if f.Institution != "" {
			r.Institution = f.Institution.Label()
		}
		r.Faculty = f.Faculty.Label()
		r.DepartmentName = f.DepartmentName
		r.DepartmentCode = f.DepartmentCode
		r.Level = f.Level
		r.ReferenceNumber = f.ReferenceNumber
		r.ClassForm = f.ClassForm.Label()
		if f.Language != "" {
			r.CodeLanguage = f.Language.Label()
		}
		r.LargeCategory = f.LargeCategory
		r.MiddleCategory = f.MiddleCategory
		r.SmallCategory = f.SmallCategory
	}

	for _, m := range GradingMethods(r.Grading) {
		switch m {
		case GradingMidterm:
			r.Midterm = true
		case GradingFinal:
			r.Final = true
		case GradingQuiz:
			r.Quiz = true
		case GradingExercise:
			r.Exercise = true
		case GradingAssignment:
			r.Assignment = true
		case GradingReport:
			r.Report = true
		case GradingPresentation:
			r.Presentation = true
		case GradingAttendance:
			r.Attendance = true
		}
	}
	return r
}

// Rows flattens every detail in order.
func Rows(details []catalog.Details) []*Row {
	rows := make([]*Row, 0, len(details))
	for i := range details {
		rows = append(rows, NewRow(&details[i]))
	}
	return rows
}

// WriteCSV writes details as CSV with a header row.
func WriteCSV(w io.Writer, details []catalog.Details) error {
	if err := gocsv.Marshal(Rows(details), w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes details to path, replacing any existing file.
func WriteCSVFile(path string, details []catalog.Details) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, details); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]*Row, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// JoinSemesters renders semesters comma-separated, e.g. "S1,S2".
func JoinSemesters(ss []catalog.Semester) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// JoinPeriods renders periods the way the catalog does, e.g. "月2,水2".
func JoinPeriods(ps []catalog.Period) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, p.Weekday.Glyph()+strconv.Itoa(p.Period))
	}
	return strings.Join(slices.Compact(parts), ",")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
