package catalog

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacultyFromLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label   string
		want    Faculty
		wantErr bool
	}{
		{"理学部", FacultyScience, false},
		{"情報理工学系研究科", GradInformationScience, false},
		{"教養学部前期課程", FacultyJuniorDivision, false},
		{"教養学部（前期課程）", FacultyJuniorDivision, false},
		{"教養学部", FacultyArtsAndSciences, false},
		{"存在しない学部", FacultyUnknown, true},
		{"", FacultyUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			got, err := FacultyFromLabel(tt.label)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFaculties(t *testing.T) {
	t.Parallel()
	fs := Faculties()
	require.Len(t, fs, 26)
	for i, f := range fs {
		assert.Equal(t, i+1, int(f), "faculty ids are contiguous")
		assert.NotEmpty(t, f.Label())
		assert.True(t, f.Valid())
	}
	assert.False(t, FacultyUnknown.Valid())
	assert.Equal(t, "Faculty(99)", Faculty(99).String())
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()
	for w := Monday; w <= Sunday; w++ {
		got, err := ParseWeekday(w.String())
		require.NoError(t, err)
		assert.Equal(t, w, got)

		got, err = ParseWeekday(w.Glyph())
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
	_, err := ParseWeekday("Funday")
	assert.Error(t, err)
	assert.Equal(t, "金", Friday.Glyph())
}

func TestParseInstitution(t *testing.T) {
	t.Parallel()
	got, err := ParseInstitution("大学院")
	require.NoError(t, err)
	assert.Equal(t, InstitutionGraduate, got)

	got, err = ParseInstitution("jd")
	require.NoError(t, err)
	assert.Equal(t, InstitutionJuniorDivision, got)

	_, err = ParseInstitution("kindergarten")
	assert.Error(t, err)
}

func TestSearchParams_ID(t *testing.T) {
	t.Parallel()

	a := SearchParams{Keyword: "数学", Faculties: []Faculty{FacultyScience}}
	b := SearchParams{Keyword: "数学", Faculties: []Faculty{FacultyScience}}
	c := SearchParams{Keyword: "数学", Faculties: []Faculty{FacultyEngineering}}

	assert.Equal(t, a.ID(), b.ID(), "equal params share an ID")
	assert.NotEqual(t, a.ID(), c.ID(), "different params differ")
	assert.Len(t, a.ID(), 64)

	// Unset institution is the same query as InstitutionAll
	d := SearchParams{Keyword: "数学", Institution: InstitutionAll, Faculties: []Faculty{FacultyScience}}
	assert.Equal(t, a.ID(), d.ID())
}

func TestSearchParams_JSON(t *testing.T) {
	t.Parallel()

	raw := `{"keyword":"線形代数","institution":"jd","faculties":["教養学部前期課程"],"weekdays":["Mon","水"],"periods":[2]}`
	var p SearchParams
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "線形代数", p.Keyword)
	assert.Equal(t, InstitutionJuniorDivision, p.Institution)
	assert.Equal(t, []Faculty{FacultyJuniorDivision}, p.Faculties)
	assert.Equal(t, []Weekday{Monday, Wednesday}, p.Weekdays)
	assert.Equal(t, []int{2}, p.Periods)
}

func TestNormalizePeriods(t *testing.T) {
	t.Parallel()
	got := NormalizePeriods([]Period{
		{Weekday: Wednesday, Period: 2},
		{Weekday: Monday, Period: 3},
		{Weekday: Wednesday, Period: 2},
		{Weekday: Monday, Period: 1},
	})
	assert.Equal(t, []Period{
		{Weekday: Monday, Period: 1},
		{Weekday: Monday, Period: 3},
		{Weekday: Wednesday, Period: 2},
	}, got)
}

func TestNormalizeSemesters(t *testing.T) {
	t.Parallel()
	got := NormalizeSemesters([]Semester{SemesterA1, SemesterS2, SemesterA1, SemesterS1})
	assert.Equal(t, []Semester{SemesterS1, SemesterS2, SemesterA1}, got)
}

func TestTotalPagesFor(t *testing.T) {
	t.Parallel()
	tests := map[int]int{0: 0, 1: 1, 10: 1, 11: 2, 95: 10, 100: 10, -3: 0, math.MaxInt: math.MaxInt/ItemsPerPage + 1}
	for total, want := range tests {
		assert.Equal(t, want, TotalPagesFor(total), "total=%d", total)
	}
}

func TestCurrentFiscalYear(t *testing.T) {
	t.Parallel()
	jst := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, 2023, CurrentFiscalYear(time.Date(2024, time.March, 31, 23, 0, 0, 0, jst)))
	assert.Equal(t, 2024, CurrentFiscalYear(time.Date(2024, time.April, 1, 0, 0, 0, 0, jst)))
	assert.Equal(t, 2024, CurrentFiscalYear(time.Date(2024, time.December, 1, 0, 0, 0, 0, jst)))
}

func TestDetails_CreditsValue(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 2.0, (&Details{Credits: "2"}).CreditsValue(), 1e-9)
	assert.InDelta(t, 1.5, (&Details{Credits: "1.5"}).CreditsValue(), 1e-9)
	assert.Zero(t, (&Details{Credits: ""}).CreditsValue())
}
