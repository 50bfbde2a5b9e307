package parser

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
)

var formatReplacer = strings.NewReplacer(
	"　", " ",
	" ", "",
	"\n", "",
	"\r", "",
	"\t", "",
)

// Format normalizes cell text: ideographic spaces become ASCII spaces and
// ASCII whitespace is removed.
func Format(text string) string {
	return formatReplacer.Replace(text)
}

// FormatDescription trims leading and trailing whitespace of free text,
// keeping inner line breaks.
func FormatDescription(text string) string {
	return strings.TrimSpace(text)
}

var digitsRe = regexp.MustCompile(`[0-9]+`)

// ParseWeekdayPeriods parses a period cell such as "月曜2限、水曜2限".
//
// Intensive courses (集中) and per-term schedules (containing ":") have no
// weekly slot and yield nil. Tokens without a weekday glyph or a number are
// skipped. An empty token (e.g. a trailing "、") yields nil.
func ParseWeekdayPeriods(text string) []catalog.Period {
	text = Format(text)
	if text == "" || strings.Contains(text, ":") || strings.Contains(text, "集中") {
		return nil
	}

	var periods []catalog.Period
	for token := range strings.SplitSeq(text, "、") {
		if token == "" {
			return nil
		}
		p, ok := parsePeriodToken(token)
		if !ok {
			continue
		}
		periods = append(periods, p)
	}
	return catalog.NormalizePeriods(periods)
}

// parsePeriodToken picks the weekday by glyph order (月 before 火 ...), not by
// position in the token, and the first run of digits as the period number.
func parsePeriodToken(token string) (catalog.Period, bool) {
	weekday := catalog.Weekday(-1)
	for i, glyph := range []rune(catalog.WeekdayGlyphs) {
		if strings.ContainsRune(token, glyph) {
			weekday = catalog.Weekday(i)
			break
		}
	}
	if !weekday.Valid() {
		return catalog.Period{}, false
	}

	m := digitsRe.FindString(width.Fold.String(token))
	if m == "" {
		return catalog.Period{}, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return catalog.Period{}, false
	}
	return catalog.Period{Weekday: weekday, Period: n}, true
}
