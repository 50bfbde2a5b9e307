package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"time"
)

// ItemsPerPage is the fixed page size of the search endpoint.
const ItemsPerPage = 10

// Period is one weekly slot, e.g. Monday 2nd period.
type Period struct {
	Weekday Weekday `json:"weekday"`
	Period  int     `json:"period"`
}

// NormalizePeriods sorts periods by weekday then period and drops duplicates.
func NormalizePeriods(ps []Period) []Period {
	out := slices.Clone(ps)
	slices.SortFunc(out, func(a, b Period) int {
		if c := cmp.Compare(a.Weekday, b.Weekday); c != 0 {
			return c
		}
		return cmp.Compare(a.Period, b.Period)
	})
	return slices.Compact(out)
}

// NormalizeSemesters sorts semesters in academic order and drops duplicates.
func NormalizeSemesters(ss []Semester) []Semester {
	out := slices.Clone(ss)
	slices.SortFunc(out, func(a, b Semester) int {
		return cmp.Compare(semesterOrder[a], semesterOrder[b])
	})
	return slices.Compact(out)
}

// SearchResultItem is one course card of a search result page.
type SearchResultItem struct {
	TimetableCode string     `json:"timetable_code"` // 時間割コード
	CommonCode    CommonCode `json:"common_code"`    // 共通科目コード
	Title         string     `json:"title"`          // コース名
	Lecturer      string     `json:"lecturer"`       // 教員
	Semesters     []Semester `json:"semesters"`      // 学期
	Periods       []Period   `json:"periods"`        // 曜限
	Aim           string     `json:"aim"`            // ねらい
}

// SearchResult is a single parsed result page.
type SearchResult struct {
	Items        []SearchResultItem `json:"items"`
	FirstIndex   int                `json:"first_index"`
	LastIndex    int                `json:"last_index"`
	CurrentCount int                `json:"current_count"`
	TotalCount   int                `json:"total_count"`
	CurrentPage  int                `json:"current_page"`
	TotalPages   int                `json:"total_pages"`
}

// Empty reports whether the search matched nothing.
func (r *SearchResult) Empty() bool {
	return r.TotalPages == 0
}

// TotalPagesFor returns how many pages hold total items.
func TotalPagesFor(total int) int {
	if total <= 0 {
		return 0
	}
	return (total-1)/ItemsPerPage + 1
}

// Details is everything the detail page publishes about one course.
type Details struct {
	SearchResultItem

	Classroom           string  `json:"classroom"`             // 教室
	Credits             string  `json:"credits"`               // 単位数 (decimal text)
	OtherFacultyAllowed bool    `json:"other_faculty_allowed"` // 他学部履修可
	InstructionLanguage string  `json:"instruction_language"`  // 講義使用言語
	PracticalExperience bool    `json:"practical_experience"`  // 実務経験のある教員による授業科目
	OfferingFaculty     Faculty `json:"offering_faculty"`      // 開講所属

	Schedule       *string `json:"schedule,omitempty"`        // 授業計画
	TeachingMethod *string `json:"teaching_method,omitempty"` // 授業の方法
	Grading        *string `json:"grading,omitempty"`         // 成績評価方法
	Textbooks      *string `json:"textbooks,omitempty"`       // 教科書
	References     *string `json:"references,omitempty"`      // 参考書
	Notes          *string `json:"notes,omitempty"`           // 履修上の注意
}

// CreditsValue parses Credits. Returns 0 if it is not a number.
func (d *Details) CreditsValue() float64 {
	v, err := strconv.ParseFloat(d.Credits, 64)
	if err != nil {
		return 0
	}
	return v
}

// CurrentFiscalYear returns the Japanese fiscal year (starting in April) of t.
func CurrentFiscalYear(t time.Time) int {
	if t.Month() >= time.April {
		return t.Year()
	}
	return t.Year() - 1
}
