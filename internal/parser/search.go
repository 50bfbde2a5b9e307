package parser

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// Class names of the search result page.
const (
	classTotalSearchResult = "catalog-total-search-result"
	classCardContainer     = "catalog-search-result-card-container"
	classCard              = "catalog-search-result-card"
	classTableRow          = "catalog-search-result-table-row"
	classCardBodyText      = "catalog-search-result-card-body-text"
	classSemesterIcon      = "catalog-semester-icon"
	classCodeCell          = "code-cell"
)

// maxSearchTotal bounds the counts of a result summary. The whole catalogue
// lists far fewer courses.
const maxSearchTotal = 1_000_000

// ParseSearchPage parses result page number page.
//
// A page without the result summary is an empty result (zero pages). The
// summary's first three numbers are the first index, last index and total.
// A non-final page must hold exactly ItemsPerPage items, matching the summary,
// and page must agree with the first index.
func ParseSearchPage(doc Node, page int) (*catalog.SearchResult, error) {
	summary, ok := doc.FindByClass(classTotalSearchResult)
	if !ok {
		return &catalog.SearchResult{}, nil
	}

	text := width.Fold.String(Format(summary.Text()))
	nums := digitsRe.FindAllString(text, 3)
	if len(nums) < 3 {
		return nil, domerrors.NewParserError("result summary %q has fewer than 3 numbers", text)
	}
	var counts [3]int
	for i, num := range nums {
		n, err := strconv.Atoi(num)
		if err != nil || n > maxSearchTotal {
			return nil, domerrors.NewParserError("result summary %q: count %s out of range", text, num)
		}
		counts[i] = n
	}
	first, last, total := counts[0], counts[1], counts[2]

	result := &catalog.SearchResult{
		FirstIndex:   first,
		LastIndex:    last,
		CurrentCount: last - first + 1,
		TotalCount:   total,
		CurrentPage:  page,
		TotalPages:   catalog.TotalPagesFor(total),
	}

	if container, ok := doc.FindByClass(classCardContainer); ok {
		for i, card := range container.FindAllByClass(classCard) {
			item, err := parseCard(card)
			if err != nil {
				return nil, domerrors.NewParserError("card %d: %s", i, reason(err))
			}
			result.Items = append(result.Items, item)
		}
	}

	if page != result.TotalPages {
		if len(result.Items) != catalog.ItemsPerPage {
			return nil, domerrors.NewParserError("page %d of %d has %d items, want %d",
				page, result.TotalPages, len(result.Items), catalog.ItemsPerPage)
		}
		if len(result.Items) != result.CurrentCount {
			return nil, domerrors.NewParserError("page %d has %d items, summary declares %d",
				page, len(result.Items), result.CurrentCount)
		}
	}
	if want := first/catalog.ItemsPerPage + 1; page != want {
		return nil, domerrors.NewParserError("page number %d does not match first index %d", page, first)
	}

	return result, nil
}

func parseCard(card Node) (catalog.SearchResultItem, error) {
	rows := card.FindAllByClass(classTableRow)
	if len(rows) < 2 {
		return catalog.SearchResultItem{}, domerrors.NewParserError("data row not found")
	}
	row := rows[1]

	item, err := parseCourseRow(row)
	if err != nil {
		return catalog.SearchResultItem{}, err
	}

	body, ok := card.FindByClass(classCardBodyText)
	if !ok {
		return catalog.SearchResultItem{}, domerrors.NewParserError("card body text not found")
	}
	item.Aim = FormatDescription(body.Text())
	return item, nil
}

// parseCourseRow reads the cells shared by the search card and the detail
// page header: codes, name, lecturer, semesters and periods.
func parseCourseRow(row Node) (catalog.SearchResultItem, error) {
	timetable, common, err := parseCodeCell(row)
	if err != nil {
		return catalog.SearchResultItem{}, err
	}

	name, err := cellText(row, "name")
	if err != nil {
		return catalog.SearchResultItem{}, err
	}
	lecturer, err := cellText(row, "lecturer")
	if err != nil {
		return catalog.SearchResultItem{}, err
	}
	semesterCell, err := cell(row, "semester")
	if err != nil {
		return catalog.SearchResultItem{}, err
	}
	semesters, err := parseSemesters(semesterCell)
	if err != nil {
		return catalog.SearchResultItem{}, err
	}
	period, err := cellText(row, "period")
	if err != nil {
		return catalog.SearchResultItem{}, err
	}

	return catalog.SearchResultItem{
		TimetableCode: timetable,
		CommonCode:    common,
		Title:         name,
		Lecturer:      lecturer,
		Semesters:     semesters,
		Periods:       ParseWeekdayPeriods(period),
	}, nil
}

// parseCodeCell reads the time-table code and common code, the first two
// element children of the code cell.
func parseCodeCell(row Node) (string, catalog.CommonCode, error) {
	codeCell, ok := row.FindByClass(classCodeCell)
	if !ok {
		return "", catalog.CommonCode{}, domerrors.NewParserError("cell %s not found", classCodeCell)
	}
	children := codeCell.Children()
	if len(children) < 2 {
		return "", catalog.CommonCode{}, domerrors.NewParserError("code cell has %d children, want 2", len(children))
	}
	return strings.TrimSpace(children[0].Text()), catalog.NewCommonCode(strings.TrimSpace(children[1].Text())), nil
}

func parseSemesters(n Node) ([]catalog.Semester, error) {
	var out []catalog.Semester
	for _, icon := range n.FindAllByClass(classSemesterIcon) {
		text := Format(icon.Text())
		sem, ok := catalog.ParseSemester(text)
		if !ok {
			return nil, domerrors.NewParserError("unknown semester %q", text)
		}
		out = append(out, sem)
	}
	return catalog.NormalizeSemesters(out), nil
}

func cell(row Node, name string) (Node, error) {
	n, ok := row.FindByClass(name + "-cell")
	if !ok {
		return nil, domerrors.NewParserError("cell %s not found", name)
	}
	return n, nil
}

func cellText(row Node, name string) (string, error) {
	n, err := cell(row, name)
	if err != nil {
		return "", err
	}
	return Format(n.Text()), nil
}

// reason unwraps a nested parser error so messages do not stack prefixes.
func reason(err error) string {
	var pe *domerrors.ParserError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return err.Error()
}
