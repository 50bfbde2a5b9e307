package catalog

import (
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// CommonCode is the fixed-width course code shared across the university,
// e.g. "FSC-MA2301L1":
//
//	position  0     institution (C, F, G)
//	          1-2   faculty
//	          4-5   department
//	          6     level
//	          7-9   reference number
//	          10    class form
//	          11    language
//
// Every accessor derives its value from the raw string. A position past the
// end of the code reports absent instead of failing. Decoding never panics.
type CommonCode struct {
	raw string
}

// NewCommonCode wraps a raw code string.
func NewCommonCode(raw string) CommonCode {
	return CommonCode{raw: raw}
}

func (c CommonCode) String() string {
	return c.raw
}

// IsZero reports whether the code is empty.
func (c CommonCode) IsZero() bool {
	return c.raw == ""
}

// MarshalText encodes the raw code.
func (c CommonCode) MarshalText() ([]byte, error) {
	return []byte(c.raw), nil
}

// UnmarshalText accepts any string.
func (c *CommonCode) UnmarshalText(b []byte) error {
	c.raw = string(b)
	return nil
}

// segment returns raw[from:to] only when the whole range is present.
func (c CommonCode) segment(from, to int) (string, bool) {
	if len(c.raw) < to {
		return "", false
	}
	return c.raw[from:to], true
}

// Institution decodes position 0.
func (c CommonCode) Institution() (Institution, bool) {
	s, ok := c.segment(0, 1)
	if !ok {
		return "", false
	}
	switch s {
	case "C":
		return InstitutionJuniorDivision, true
	case "F":
		return InstitutionSeniorDivision, true
	case "G":
		return InstitutionGraduate, true
	}
	return "", false
}

var graduateFaculties = map[string]Faculty{
	"HS": GradHumanitiesSociology,
	"LP": GradLawPolitics,
	"AS": GradArtsAndSciences,
	"SC": GradScience,
	"EN": GradEngineering,
	"AG": GradAgriculture,
	"ME": GradMedicine,
	"PH": GradPharmaceutical,
	"MA": GradMathematicalSciences,
	"FS": GradFrontierSciences,
	"IF": GradInformationScience,
	"II": GradInterdisciplinaryInformation,
	"PP": GradPublicPolicy,
}

var undergraduateFaculties = map[string]Faculty{
	"LA": FacultyLaw,
	"ME": FacultyMedicine,
	"EN": FacultyEngineering,
	"LE": FacultyLetters,
	"SC": FacultyScience,
	"AG": FacultyAgriculture,
	"EC": FacultyEconomics,
	"AS": FacultyArtsAndSciences,
	"ED": FacultyEducation,
	"PH": FacultyPharmaceutical,
}

// FacultyCode returns positions 1-2.
func (c CommonCode) FacultyCode() (string, bool) {
	return c.segment(1, 3)
}

// Faculty decodes positions 1-2, disambiguated by the institution.
//
// Junior division AS is 教養学部前期課程. Graduate codes are looked up in the
// graduate table first and the undergraduate table second; all other codes
// use the reverse order. A code in neither table yields a *DecodeWarning.
func (c CommonCode) Faculty() (Faculty, error) {
	code, _ := c.FacultyCode()
	inst, _ := c.Institution()

	if inst == InstitutionJuniorDivision && code == "AS" {
		return FacultyJuniorDivision, nil
	}

	first, second := undergraduateFaculties, graduateFaculties
	if inst == InstitutionGraduate {
		first, second = graduateFaculties, undergraduateFaculties
	}
	if f, ok := first[code]; ok {
		return f, nil
	}
	if f, ok := second[code]; ok {
		return f, nil
	}
	return FacultyUnknown, domerrors.NewDecodeWarning("faculty", code)
}

// FacultyOrUnknown is Faculty with the warning discarded.
func (c CommonCode) FacultyOrUnknown() Faculty {
	f, _ := c.Faculty()
	return f
}

// DepartmentCode returns positions 4-5.
func (c CommonCode) DepartmentCode() (string, bool) {
	return c.segment(4, 6)
}

// Level returns position 6.
func (c CommonCode) Level() (string, bool) {
	return c.segment(6, 7)
}

// ReferenceNumber returns positions 7-9.
func (c CommonCode) ReferenceNumber() (string, bool) {
	return c.segment(7, 10)
}

// ClassForm decodes position 10.
func (c CommonCode) ClassForm() (ClassForm, bool) {
	s, ok := c.segment(10, 11)
	if !ok {
		return "", false
	}
	cf := ClassForm(s)
	if _, known := classFormLabels[cf]; !known {
		return "", false
	}
	return cf, true
}

// Language decodes position 11.
func (c CommonCode) Language() (Language, bool) {
	if len(c.raw) < 12 {
		return "", false
	}
	l, ok := languageDigits[c.raw[11]]
	return l, ok
}

// DepartmentName resolves the department code within the decoded faculty.
// Unknown departments (or an unknown faculty) fall back to the raw code.
func (c CommonCode) DepartmentName() string {
	dept, _ := c.DepartmentCode()
	return DepartmentName(c.FacultyOrUnknown(), dept)
}

// LargeCategory is the department code.
func (c CommonCode) LargeCategory() (string, bool) {
	return c.DepartmentCode()
}

// MiddleCategory is the first digit of the reference number.
func (c CommonCode) MiddleCategory() (string, bool) {
	ref, ok := c.ReferenceNumber()
	if !ok {
		return "", false
	}
	return ref[:1], true
}

// SmallCategory is the last two digits of the reference number.
func (c CommonCode) SmallCategory() (string, bool) {
	ref, ok := c.ReferenceNumber()
	if !ok {
		return "", false
	}
	return ref[1:3], true
}

// CodeFacets is a flat view of every decoded position, used by exports.
type CodeFacets struct {
	Institution     Institution `json:"institution"`
	Faculty         Faculty     `json:"faculty"`
	DepartmentName  string      `json:"department_name"`
	DepartmentCode  string      `json:"department_code"`
	Level           string      `json:"level"`
	ReferenceNumber string      `json:"reference_number"`
	ClassForm       ClassForm   `json:"class_form"`
	Language        Language    `json:"language"`
	LargeCategory   string      `json:"large_category"`
	MiddleCategory  string      `json:"middle_category"`
	SmallCategory   string      `json:"small_category"`
}

// Facets decodes every position at once. Absent positions are left zero.
func (c CommonCode) Facets() CodeFacets {
	var f CodeFacets
	f.Institution, _ = c.Institution()
	f.Faculty = c.FacultyOrUnknown()
	f.DepartmentName = c.DepartmentName()
	f.DepartmentCode, _ = c.DepartmentCode()
	f.Level, _ = c.Level()
	f.ReferenceNumber, _ = c.ReferenceNumber()
	f.ClassForm, _ = c.ClassForm()
	f.Language, _ = c.Language()
	f.LargeCategory, _ = c.LargeCategory()
	f.MiddleCategory, _ = c.MiddleCategory()
	f.SmallCategory, _ = c.SmallCategory()
	return f
}
