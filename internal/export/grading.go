package export

import "strings"

// GradingMethod is an assessment component mentioned in a grading text.
type GradingMethod int

const (
	GradingMidterm GradingMethod = iota
	GradingFinal
	GradingQuiz
	GradingExercise
	GradingAssignment
	GradingReport
	GradingPresentation
	GradingAttendance
)

var gradingLabels = [...]string{"中間", "期末", "小テスト", "演習", "課題", "レポート", "発表", "出席"}

// Label returns the Japanese column name.
func (g GradingMethod) Label() string {
	if g < 0 || int(g) >= len(gradingLabels) {
		return ""
	}
	return gradingLabels[g]
}

// gradingKeywords are matched as case-sensitive substrings.
var gradingKeywords = [...][]string{
	GradingMidterm:      {"中間", "mid"},
	GradingFinal:        {"試験", "exam", "テスト", "最終試験", "追試", "Makeup"},
	GradingQuiz:         {"小テスト", "クイズ", "quiz"},
	GradingExercise:     {"演習", "実習"},
	GradingAssignment:   {"課題", "assign", "宿題"},
	GradingReport:       {"レポート", "レポ", "report"},
	GradingPresentation: {"発表", "presenta", "プレゼン"},
	GradingAttendance:   {"出席", "発表", "参加", "attend", "平常", "出欠", "リアペ", "リアクション"},
}

// GradingMethods lists the methods a grading text mentions, in declaration
// order. "期末" alone counts as a final exam unless it only appears as
// 期末レポート or 期末課題.
func GradingMethods(text string) []GradingMethod {
	if text == "" {
		return nil
	}
	var out []GradingMethod
	for g, keywords := range gradingKeywords {
		method := GradingMethod(g)
		if containsAny(text, keywords) ||
			(method == GradingFinal && strings.Contains(text, "期末") && !containsAny(text, []string{"期末レポ", "期末課題"})) {
			out = append(out, method)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
