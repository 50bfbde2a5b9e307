// Package catalog defines the data model of the UTokyo Online Course Catalogue:
// enumerations, the fixed-width common code, search parameters and the records
// produced by the page parser.
package catalog

import (
	"fmt"

	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// Institution is the division a course belongs to.
type Institution string

const (
	InstitutionJuniorDivision Institution = "jd" // 学部前期課程
	InstitutionSeniorDivision Institution = "ug" // 学部後期課程
	InstitutionGraduate       Institution = "g"  // 大学院
	InstitutionAll            Institution = "all"
)

var institutionLabels = map[Institution]string{
	InstitutionJuniorDivision: "学部前期課程",
	InstitutionSeniorDivision: "学部後期課程",
	InstitutionGraduate:       "大学院",
	InstitutionAll:            "All",
}

// Label returns the Japanese name used by the catalog website.
func (i Institution) Label() string {
	if l, ok := institutionLabels[i]; ok {
		return l
	}
	return string(i)
}

// ParseInstitution accepts either the query value ("jd") or the Japanese label.
func ParseInstitution(s string) (Institution, error) {
	for inst, label := range institutionLabels {
		if s == string(inst) || s == label {
			return inst, nil
		}
	}
	return "", domerrors.InvalidConfiguration("unknown institution %q", s)
}

// Faculty is an offering faculty or graduate school.
// The numeric value is the faculty_id understood by the search endpoint.
type Faculty int

const (
	FacultyUnknown                   Faculty = 0
	FacultyLaw                       Faculty = 1  // 法学部
	FacultyMedicine                  Faculty = 2  // 医学部
	FacultyEngineering               Faculty = 3  // 工学部
	FacultyLetters                   Faculty = 4  // 文学部
	FacultyScience                   Faculty = 5  // 理学部
	FacultyAgriculture               Faculty = 6  // 農学部
	FacultyEconomics                 Faculty = 7  // 経済学部
	FacultyArtsAndSciences           Faculty = 8  // 教養学部
	FacultyEducation                 Faculty = 9  // 教育学部
	FacultyPharmaceutical            Faculty = 10 // 薬学部
	GradHumanitiesSociology          Faculty = 11 // 人文社会系研究科
	GradEducation                    Faculty = 12 // 教育学研究科
	GradLawPolitics                  Faculty = 13 // 法学政治学研究科
	GradEconomics                    Faculty = 14 // 経済学研究科
	GradArtsAndSciences              Faculty = 15 // 総合文化研究科
	GradScience                      Faculty = 16 // 理学系研究科
	GradEngineering                  Faculty = 17 // 工学系研究科
	GradAgriculture                  Faculty = 18 // 農学生命科学研究科
	GradMedicine                     Faculty = 19 // 医学系研究科
	GradPharmaceutical               Faculty = 20 // 薬学系研究科
	GradMathematicalSciences         Faculty = 21 // 数理科学研究科
	GradFrontierSciences             Faculty = 22 // 新領域創成科学研究科
	GradInformationScience           Faculty = 23 // 情報理工学系研究科
	GradInterdisciplinaryInformation Faculty = 24 // 学際情報学府
	GradPublicPolicy                 Faculty = 25 // 公共政策学教育部
	FacultyJuniorDivision            Faculty = 26 // 教養学部前期課程
)

var facultyLabels = [...]string{
	FacultyUnknown:                   "",
	FacultyLaw:                       "法学部",
	FacultyMedicine:                  "医学部",
	FacultyEngineering:               "工学部",
	FacultyLetters:                   "文学部",
	FacultyScience:                   "理学部",
	FacultyAgriculture:               "農学部",
	FacultyEconomics:                 "経済学部",
	FacultyArtsAndSciences:           "教養学部",
	FacultyEducation:                 "教育学部",
	FacultyPharmaceutical:            "薬学部",
	GradHumanitiesSociology:          "人文社会系研究科",
	GradEducation:                    "教育学研究科",
	GradLawPolitics:                  "法学政治学研究科",
	GradEconomics:                    "経済学研究科",
	GradArtsAndSciences:              "総合文化研究科",
	GradScience:                      "理学系研究科",
	GradEngineering:                  "工学系研究科",
	GradAgriculture:                  "農学生命科学研究科",
	GradMedicine:                     "医学系研究科",
	GradPharmaceutical:               "薬学系研究科",
	GradMathematicalSciences:         "数理科学研究科",
	GradFrontierSciences:             "新領域創成科学研究科",
	GradInformationScience:           "情報理工学系研究科",
	GradInterdisciplinaryInformation: "学際情報学府",
	GradPublicPolicy:                 "公共政策学教育部",
	FacultyJuniorDivision:            "教養学部前期課程",
}

// Faculties returns every known faculty in id order.
func Faculties() []Faculty {
	out := make([]Faculty, 0, len(facultyLabels)-1)
	for f := FacultyLaw; f <= FacultyJuniorDivision; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is one of the 26 known faculties.
func (f Faculty) Valid() bool {
	return f >= FacultyLaw && f <= FacultyJuniorDivision
}

// Label returns the Japanese name, or "" for FacultyUnknown.
func (f Faculty) Label() string {
	if f < 0 || int(f) >= len(facultyLabels) {
		return ""
	}
	return facultyLabels[f]
}

func (f Faculty) String() string {
	if l := f.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("Faculty(%d)", int(f))
}

// MarshalText encodes the faculty as its Japanese label.
func (f Faculty) MarshalText() ([]byte, error) {
	return []byte(f.Label()), nil
}

// UnmarshalText decodes a Japanese label. The empty string is FacultyUnknown.
func (f *Faculty) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*f = FacultyUnknown
		return nil
	}
	v, err := FacultyFromLabel(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// juniorDivisionLabel is how the detail page spells 教養学部前期課程.
const juniorDivisionLabel = "教養学部（前期課程）"

// FacultyFromLabel converts the faculty text shown on the website.
func FacultyFromLabel(label string) (Faculty, error) {
	if label == juniorDivisionLabel {
		return FacultyJuniorDivision, nil
	}
	for _, f := range Faculties() {
		if facultyLabels[f] == label {
			return f, nil
		}
	}
	return FacultyUnknown, domerrors.NewDecodeWarning("faculty label", label)
}

// ClassForm is the teaching format encoded at position 10 of a common code.
type ClassForm string

const (
	ClassFormLecture    ClassForm = "L" // 講義
	ClassFormSeminar    ClassForm = "S" // 演習
	ClassFormExperiment ClassForm = "E" // 実験
	ClassFormPractical  ClassForm = "P" // 実習
	ClassFormThesis     ClassForm = "T" // 卒業論文
	ClassFormOther      ClassForm = "Z" // その他
)

var classFormLabels = map[ClassForm]string{
	ClassFormLecture:    "講義",
	ClassFormSeminar:    "演習",
	ClassFormExperiment: "実験",
	ClassFormPractical:  "実習",
	ClassFormThesis:     "卒業論文",
	ClassFormOther:      "その他",
}

// Label returns the Japanese name, or "" for unknown forms.
func (c ClassForm) Label() string {
	return classFormLabels[c]
}

// Language is the language of instruction.
type Language string

const (
	LanguageJapanese           Language = "ja"
	LanguageEnglish            Language = "en"
	LanguageJapaneseAndEnglish Language = "ja,en"
	LanguageOtherLanguagesToo  Language = "other"
	LanguageOnlyOtherLanguages Language = "only_other"
	LanguageOthers             Language = "others"
)

// languageDigits maps position 11 of a common code.
var languageDigits = map[byte]Language{
	'1': LanguageJapanese,
	'2': LanguageJapaneseAndEnglish,
	'3': LanguageEnglish,
	'4': LanguageOtherLanguagesToo,
	'5': LanguageOnlyOtherLanguages,
	'9': LanguageOthers,
}

var languageLabels = map[Language]string{
	LanguageJapanese:           "Japanese",
	LanguageEnglish:            "English",
	LanguageJapaneseAndEnglish: "JapaneseAndEnglish",
	LanguageOtherLanguagesToo:  "OtherLanguagesToo",
	LanguageOnlyOtherLanguages: "OnlyOtherLanguages",
	LanguageOthers:             "Others",
}

// Label returns a readable name, or the raw value for unknown languages.
func (l Language) Label() string {
	if s, ok := languageLabels[l]; ok {
		return s
	}
	return string(l)
}

// Semester is an academic term.
type Semester string

const (
	SemesterS1     Semester = "S1"
	SemesterS2     Semester = "S2"
	SemesterA1     Semester = "A1"
	SemesterA2     Semester = "A2"
	SemesterWinter Semester = "W"
)

// semesterOrder is the academic order used when sorting.
var semesterOrder = map[Semester]int{
	SemesterS1:     0,
	SemesterS2:     1,
	SemesterA1:     2,
	SemesterA2:     3,
	SemesterWinter: 4,
}

// ParseSemester accepts the exact icon text (S1, S2, A1, A2, W).
func ParseSemester(s string) (Semester, bool) {
	sem := Semester(s)
	_, ok := semesterOrder[sem]
	return sem, ok
}

// Weekday is a day of the week, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayGlyphs lists the Japanese weekday characters in Weekday order.
const WeekdayGlyphs = "月火水木金土日"

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Valid reports whether w is Monday through Sunday.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Glyph returns the Japanese single-character name.
func (w Weekday) Glyph() string {
	if !w.Valid() {
		return ""
	}
	return string([]rune(WeekdayGlyphs)[w])
}

// ParseWeekday accepts English short names (Mon) or Japanese glyphs (月).
func ParseWeekday(s string) (Weekday, error) {
	for w := Monday; w <= Sunday; w++ {
		if s == weekdayNames[w] || s == w.Glyph() {
			return w, nil
		}
	}
	return 0, domerrors.InvalidConfiguration("unknown weekday %q", s)
}

// MarshalText encodes the English short name (Mon).
func (w Weekday) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(w))
	}
	return []byte(weekdayNames[w]), nil
}

// UnmarshalText accepts anything ParseWeekday does.
func (w *Weekday) UnmarshalText(b []byte) error {
	v, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
