// Package parsertest renders catalog pages with the markup the parser expects.
// It is used by tests and fixture servers.
package parsertest

import (
	"fmt"
	"html"
	"strings"
)

// Course is one course as rendered on a search card or detail header.
type Course struct {
	TimetableCode string
	CommonCode    string
	Title         string
	Lecturer      string
	Semesters     []string
	Period        string
	Aim           string
}

// Section is one titled card of the detail page.
type Section struct {
	Title string
	Body  string
}

// Detail holds the detail-only fields of a course.
type Detail struct {
	Language            string
	PracticalExperience string
	Faculty             string
	Credits             string
	OtherFaculty        string
	Sections            []Section
}

// DefaultDetail returns plausible detail fields for a science lecture.
func DefaultDetail() Detail {
	return Detail{
		Language:            "日本語",
		PracticalExperience: "NO",
		Faculty:             "理学部",
		Credits:             "2",
		OtherFaculty:        "可",
		Sections: []Section{
			{Title: "授業計画", Body: "\n  第1回 ガイダンス\n  第2回 集合と写像\n"},
			{Title: "成績評価方法", Body: "期末試験"},
		},
	}
}

// Courses returns n distinct courses numbered from start.
func Courses(start, n int) []Course {
	out := make([]Course, 0, n)
	for i := start; i < start+n; i++ {
		out = append(out, Course{
			TimetableCode: fmt.Sprintf("%07d", 505000+i),
			CommonCode:    "FSC-MA2301L1",
			Title:         fmt.Sprintf("数学講究 %d", i),
			Lecturer:      "東大　太郎",
			Semesters:     []string{"S1", "S2"},
			Period:        "月曜2限、水曜2限",
			Aim:           fmt.Sprintf("  講義 %d のねらい\n", i),
		})
	}
	return out
}

// SearchPage renders a result page showing items first..last of total.
func SearchPage(first, last, total int, courses []Course) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body>\n")
	fmt.Fprintf(&b, "<div class=\"catalog-total-search-result\">\n  %d 件 - %d 件 （全 %d 件）\n</div>\n", first, last, total)
	b.WriteString("<div class=\"catalog-search-result-card-container\">\n")
	for _, c := range courses {
		b.WriteString("<div class=\"catalog-search-result-card\">\n")
		b.WriteString("  <div class=\"catalog-search-result-table-row\">\n    <div class=\"code-cell\">時間割コード</div>\n  </div>\n")
		b.WriteString("  <div class=\"catalog-search-result-table-row\">\n")
		writeCourseCells(&b, c)
		b.WriteString("  </div>\n")
		fmt.Fprintf(&b, "  <div class=\"catalog-search-result-card-body-text\">%s</div>\n", html.EscapeString(c.Aim))
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n</body></html>\n")
	return b.String()
}

// EmptySearchPage renders a page for a query matching nothing.
func EmptySearchPage() string {
	return "<!DOCTYPE html><html><body><div class=\"catalog-search-no-result\">該当する授業はありません</div></body></html>\n"
}

// DetailPage renders the detail page of a course.
func DetailPage(c Course, d Detail) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body>\n")
	b.WriteString("<div class=\"catalog-row\"><div class=\"code-cell\">時間割コード</div></div>\n")
	b.WriteString("<div class=\"catalog-row\">\n")
	writeCourseCells(&b, c)
	b.WriteString("</div>\n")
	fmt.Fprintf(&b, "<div class=\"catalog-page-detail-lecture-aim\">%s</div>\n", html.EscapeString(c.Aim))
	b.WriteString("<div class=\"catalog-page-detail-table\">\n")
	fmt.Fprintf(&b, "  <div class=\"td1-cell\">%s</div>\n", html.EscapeString(d.Language))
	fmt.Fprintf(&b, "  <div class=\"td1-cell\">%s</div>\n", html.EscapeString(d.PracticalExperience))
	fmt.Fprintf(&b, "  <div class=\"td1-cell\">%s</div>\n", html.EscapeString(d.Faculty))
	fmt.Fprintf(&b, "  <div class=\"td2-cell\">%s</div>\n", html.EscapeString(d.Credits))
	fmt.Fprintf(&b, "  <div class=\"td2-cell\">%s</div>\n", html.EscapeString(d.OtherFaculty))
	b.WriteString("  <div class=\"td2-cell\">-</div>\n")
	b.WriteString("</div>\n")
	for _, s := range d.Sections {
		b.WriteString("<div class=\"catalog-page-detail-card\">\n")
		fmt.Fprintf(&b, "  <div class=\"catalog-page-detail-card-header\">\n    %s\n  </div>\n", html.EscapeString(s.Title))
		fmt.Fprintf(&b, "  <div class=\"catalog-page-detail-card-body-pre\">%s</div>\n", html.EscapeString(s.Body))
		b.WriteString("</div>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func writeCourseCells(b *strings.Builder, c Course) {
	fmt.Fprintf(b, "    <div class=\"code-cell\">\n      <div>%s</div>\n      <div>%s</div>\n    </div>\n",
		html.EscapeString(c.TimetableCode), html.EscapeString(c.CommonCode))
	fmt.Fprintf(b, "    <div class=\"name-cell\">%s</div>\n", html.EscapeString(c.Title))
	fmt.Fprintf(b, "    <div class=\"lecturer-cell\">%s</div>\n", html.EscapeString(c.Lecturer))
	b.WriteString("    <div class=\"semester-cell\">")
	for _, s := range c.Semesters {
		fmt.Fprintf(b, "<span class=\"catalog-semester-icon\">\n %s\n</span>", html.EscapeString(s))
	}
	b.WriteString("</div>\n")
	fmt.Fprintf(b, "    <div class=\"period-cell\">%s</div>\n", html.EscapeString(c.Period))
}
