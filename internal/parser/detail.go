package parser

import (
	"strconv"
	"strings"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// Class names of the detail page.
const (
	classDetailRow        = "catalog-row"
	classDetailCard       = "catalog-page-detail-card"
	classDetailCardHeader = "catalog-page-detail-card-header"
	classDetailCardBody   = "catalog-page-detail-card-body-pre"
	classDetailLectureAim = "catalog-page-detail-lecture-aim"
)

// Section titles of the detail cards.
const (
	SectionSchedule       = "授業計画"
	SectionTeachingMethod = "授業の方法"
	SectionGrading        = "成績評価方法"
	SectionTextbooks      = "教科書"
	SectionReferences     = "参考書"
	SectionNotes          = "履修上の注意"
)

// Positions in the tdN-cell grid of the detail page. Position i is the
// (i%3)-th element with class "td{i/3+1}-cell".
const (
	gridLanguage            = 0
	gridPracticalExperience = 1
	gridOfferingFaculty     = 2
	gridCredits             = 3
	gridOtherFaculty        = 4
)

// classroomUnavailable is reported because the detail page does not publish rooms.
const classroomUnavailable = "N/A"

// ParseDetailPage parses a course detail page.
func ParseDetailPage(doc Node) (*catalog.Details, error) {
	rows := doc.FindAllByClass(classDetailRow)
	if len(rows) < 2 {
		return nil, domerrors.NewParserError("detail row not found")
	}
	item, err := parseCourseRow(rows[1])
	if err != nil {
		return nil, err
	}

	aim, ok := doc.FindByClass(classDetailLectureAim)
	if !ok {
		return nil, domerrors.NewParserError("lecture aim not found")
	}
	item.Aim = Format(aim.Text())

	grid := func(i int) (string, error) {
		class := "td" + strconv.Itoa(i/3+1) + "-cell"
		cells := doc.FindAllByClass(class)
		if len(cells) <= i%3 {
			return "", domerrors.NewParserError("grid cell %s[%d] not found", class, i%3)
		}
		return Format(cells[i%3].Text()), nil
	}

	language, err := grid(gridLanguage)
	if err != nil {
		return nil, err
	}
	practical, err := grid(gridPracticalExperience)
	if err != nil {
		return nil, err
	}
	facultyLabel, err := grid(gridOfferingFaculty)
	if err != nil {
		return nil, err
	}
	faculty, err := catalog.FacultyFromLabel(facultyLabel)
	if err != nil {
		return nil, domerrors.NewParserError("offering faculty %q unknown", facultyLabel)
	}
	credits, err := grid(gridCredits)
	if err != nil {
		return nil, err
	}
	if _, err := strconv.ParseFloat(credits, 64); err != nil {
		return nil, domerrors.NewParserError("credits %q is not a number", credits)
	}
	otherFaculty, err := grid(gridOtherFaculty)
	if err != nil {
		return nil, err
	}

	sections, err := parseSections(doc)
	if err != nil {
		return nil, err
	}

	return &catalog.Details{
		SearchResultItem:    item,
		Classroom:           classroomUnavailable,
		Credits:             credits,
		OtherFacultyAllowed: !strings.Contains(otherFaculty, "不可"),
		InstructionLanguage: language,
		PracticalExperience: strings.Contains(practical, "YES"),
		OfferingFaculty:     faculty,
		Schedule:            sections[SectionSchedule],
		TeachingMethod:      sections[SectionTeachingMethod],
		Grading:             sections[SectionGrading],
		Textbooks:           sections[SectionTextbooks],
		References:          sections[SectionReferences],
		Notes:               sections[SectionNotes],
	}, nil
}

// parseSections maps card titles to their trimmed body text.
// Every card must have both a header and a body.
func parseSections(doc Node) (map[string]*string, error) {
	sections := make(map[string]*string)
	for i, card := range doc.FindAllByClass(classDetailCard) {
		header, ok := card.FindByClass(classDetailCardHeader)
		if !ok {
			return nil, domerrors.NewParserError("card %d header not found", i)
		}
		body, ok := card.FindByClass(classDetailCardBody)
		if !ok {
			return nil, domerrors.NewParserError("card %d body not found", i)
		}
		text := FormatDescription(body.Text())
		sections[Format(header.Text())] = &text
	}
	return sections, nil
}
