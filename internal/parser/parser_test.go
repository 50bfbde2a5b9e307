package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
	"github.com/garyellow/ut-course-catalog-go/internal/parser/parsertest"
)

func mustParse(t *testing.T, html string) Node {
	t.Helper()
	doc, err := FromHTML(html)
	require.NoError(t, err)
	return doc
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii whitespace removed", " 月曜 2限\n\t", "月曜2限"},
		{"ideographic space kept as ascii space", "東大　太郎", "東大 太郎"},
		{"carriage return removed", "A1\r\n", "A1"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormatDescription(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "第1回\n第2回", FormatDescription("\n　 第1回\n第2回 \n"))
}

func TestParseWeekdayPeriods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []catalog.Period
	}{
		{
			name: "two entries",
			in:   "月曜2限、水曜2限",
			want: []catalog.Period{{Weekday: catalog.Monday, Period: 2}, {Weekday: catalog.Wednesday, Period: 2}},
		},
		{
			name: "single entry with spaces",
			in:   " 金曜 5限 ",
			want: []catalog.Period{{Weekday: catalog.Friday, Period: 5}},
		},
		{
			name: "full-width digit",
			in:   "火曜３限",
			want: []catalog.Period{{Weekday: catalog.Tuesday, Period: 3}},
		},
		{
			name: "duplicates collapse",
			in:   "木曜1限、木曜1限",
			want: []catalog.Period{{Weekday: catalog.Thursday, Period: 1}},
		},
		{name: "intensive", in: "集中", want: nil},
		{name: "intensive mixed", in: "月曜2限、集中", want: nil},
		{name: "per-term schedule", in: "S1: 集中、A1: 月曜3限 他", want: nil},
		{name: "colon alone", in: "A1:月曜3限", want: nil},
		{name: "empty", in: "", want: nil},
		{name: "trailing separator", in: "月曜2限、", want: nil},
		{
			name: "token without digits skipped",
			in:   "月曜、水曜4限",
			want: []catalog.Period{{Weekday: catalog.Wednesday, Period: 4}},
		},
		{
			name: "token without weekday skipped",
			in:   "その他、土曜1限",
			want: []catalog.Period{{Weekday: catalog.Saturday, Period: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseWeekdayPeriods(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseWeekdayPeriods(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseSearchPage_FirstPage(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, parsertest.SearchPage(1, 10, 23, parsertest.Courses(0, 10)))

	result, err := ParseSearchPage(doc, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FirstIndex)
	assert.Equal(t, 10, result.LastIndex)
	assert.Equal(t, 10, result.CurrentCount)
	assert.Equal(t, 23, result.TotalCount)
	assert.Equal(t, 1, result.CurrentPage)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Items, 10)

	want := catalog.SearchResultItem{
		TimetableCode: "0505000",
		CommonCode:    catalog.NewCommonCode("FSC-MA2301L1"),
		Title:         "数学講究0",
		Lecturer:      "東大 太郎",
		Semesters:     []catalog.Semester{catalog.SemesterS1, catalog.SemesterS2},
		Periods: []catalog.Period{
			{Weekday: catalog.Monday, Period: 2},
			{Weekday: catalog.Wednesday, Period: 2},
		},
		Aim: "講義 0 のねらい",
	}
	if diff := cmp.Diff(want, result.Items[0], cmp.AllowUnexported(catalog.CommonCode{})); diff != "" {
		t.Errorf("first item mismatch (-want +got):\n%s", diff)
	}
	// Document order is preserved
	assert.Equal(t, "0505009", result.Items[9].TimetableCode)
}

func TestParseSearchPage_FinalPage(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, parsertest.SearchPage(21, 23, 23, parsertest.Courses(20, 3)))

	result, err := ParseSearchPage(doc, 3)
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, 3, result.CurrentCount)
	assert.Equal(t, 3, result.TotalPages)
}

func TestParseSearchPage_FullWidthSummary(t *testing.T) {
	t.Parallel()
	html := strings.Replace(parsertest.SearchPage(1, 3, 3, parsertest.Courses(0, 3)),
		"1 件 - 3 件 （全 3 件）", "１件-3件（全３件）", 1)

	result, err := ParseSearchPage(mustParse(t, html), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FirstIndex)
	assert.Equal(t, 3, result.LastIndex)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 1, result.TotalPages)
	assert.Len(t, result.Items, 3)
}

func TestParseSearchPage_Empty(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, parsertest.EmptySearchPage())

	result, err := ParseSearchPage(doc, 1)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.TotalPages)
	assert.Zero(t, result.TotalCount)
	assert.True(t, result.Empty())
}

func TestParseSearchPage_ConsistencyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		page int
	}{
		{
			name: "short non-final page",
			html: parsertest.SearchPage(1, 10, 23, parsertest.Courses(0, 9)),
			page: 1,
		},
		{
			name: "summary disagrees with item count",
			html: parsertest.SearchPage(1, 9, 23, parsertest.Courses(0, 10)),
			page: 1,
		},
		{
			name: "page does not match first index",
			html: parsertest.SearchPage(11, 20, 23, parsertest.Courses(10, 10)),
			page: 1,
		},
		{
			name: "summary without numbers",
			html: `<div class="catalog-total-search-result">件</div>`,
			page: 1,
		},
		{
			name: "total out of range",
			html: `<div class="catalog-total-search-result">1 件 - 10 件 （全 99999999999999999999 件）</div>`,
			page: 1,
		},
		{
			name: "total above bound",
			html: `<div class="catalog-total-search-result">1 件 - 10 件 （全 1000001 件）</div>`,
			page: 1,
		},
		{
			name: "missing name cell",
			html: `<div class="catalog-total-search-result">1 - 1 / 1</div>
<div class="catalog-search-result-card-container"><div class="catalog-search-result-card">
<div class="catalog-search-result-table-row"></div>
<div class="catalog-search-result-table-row"><div class="code-cell"><div>1</div><div>FSC-MA2301L1</div></div></div>
<div class="catalog-search-result-card-body-text">aim</div>
</div></div>`,
			page: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSearchPage(mustParse(t, tt.html), tt.page)
			var pe *domerrors.ParserError
			if !errors.As(err, &pe) {
				t.Fatalf("ParseSearchPage() error = %v, want *ParserError", err)
			}
		})
	}
}

func TestParseDetailPage(t *testing.T) {
	t.Parallel()
	course := parsertest.Courses(1, 1)[0]
	doc := mustParse(t, parsertest.DetailPage(course, parsertest.DefaultDetail()))

	d, err := ParseDetailPage(doc)
	require.NoError(t, err)

	assert.Equal(t, "0505001", d.TimetableCode)
	assert.Equal(t, "FSC-MA2301L1", d.CommonCode.String())
	assert.Equal(t, "数学講究1", d.Title)
	assert.Equal(t, "講義1のねらい", d.Aim)
	assert.Equal(t, "N/A", d.Classroom)
	assert.Equal(t, "2", d.Credits)
	assert.True(t, d.OtherFacultyAllowed)
	assert.Equal(t, "日本語", d.InstructionLanguage)
	assert.False(t, d.PracticalExperience)
	assert.Equal(t, catalog.FacultyScience, d.OfferingFaculty)
	assert.Equal(t, []catalog.Semester{catalog.SemesterS1, catalog.SemesterS2}, d.Semesters)

	require.NotNil(t, d.Schedule)
	assert.Equal(t, "第1回 ガイダンス\n  第2回 集合と写像", *d.Schedule)
	require.NotNil(t, d.Grading)
	assert.Equal(t, "期末試験", *d.Grading)
	assert.Nil(t, d.TeachingMethod)
	assert.Nil(t, d.Textbooks)
	assert.Nil(t, d.References)
	assert.Nil(t, d.Notes)
}

func TestParseDetailPage_Flags(t *testing.T) {
	t.Parallel()
	detail := parsertest.DefaultDetail()
	detail.PracticalExperience = "YES"
	detail.OtherFaculty = "不可"
	detail.Faculty = "教養学部（前期課程）"
	detail.Credits = "1.5"

	d, err := ParseDetailPage(mustParse(t, parsertest.DetailPage(parsertest.Courses(0, 1)[0], detail)))
	require.NoError(t, err)
	assert.True(t, d.PracticalExperience)
	assert.False(t, d.OtherFacultyAllowed)
	assert.Equal(t, catalog.FacultyJuniorDivision, d.OfferingFaculty)
	assert.InDelta(t, 1.5, d.CreditsValue(), 1e-9)
}

func TestParseDetailPage_Errors(t *testing.T) {
	t.Parallel()
	course := parsertest.Courses(0, 1)[0]

	badCredits := parsertest.DefaultDetail()
	badCredits.Credits = "二"

	badFaculty := parsertest.DefaultDetail()
	badFaculty.Faculty = "未来学部"

	tests := []struct {
		name string
		html string
	}{
		{"no detail row", "<html><body></body></html>"},
		{"credits not a number", parsertest.DetailPage(course, badCredits)},
		{"unknown offering faculty", parsertest.DetailPage(course, badFaculty)},
		{
			"card without body",
			parsertest.DetailPage(course, parsertest.DefaultDetail()) +
				`<div class="catalog-page-detail-card"><div class="catalog-page-detail-card-header">参考書</div></div>`,
		},
		{
			"card without header",
			parsertest.DetailPage(course, parsertest.DefaultDetail()) +
				`<div class="catalog-page-detail-card"><div class="catalog-page-detail-card-body-pre">本</div></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDetailPage(mustParse(t, tt.html))
			assert.True(t, domerrors.IsParserError(err), "error = %v", err)
		})
	}
}

func TestNode_Children(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `<div class="a"> text <span>x</span> more <span>y</span></div>`)
	a, ok := doc.FindByClass("a")
	require.True(t, ok)
	children := a.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "x", children[0].Text())
	assert.Equal(t, "y", children[1].Text())

	_, ok = doc.FindByClass("missing")
	assert.False(t, ok)
	assert.Empty(t, doc.FindAllByClass("missing"))
}
