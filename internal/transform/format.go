package transform

import (
	"regexp"
	"sort"
	"strings"

	"tableone/pkg/contracts/domain"
)

// abbreviations maps lowercase clinical shorthand to its canonical
// rendering. Lookup is case-insensitive on whole words.
var abbreviations = map[string]string{
	"bmi":  "BMI",
	"hdl":  "HDL",
	"ldl":  "LDL",
	"sbp":  "SBP",
	"dbp":  "DBP",
	"hr":   "HR",
	"rr":   "RR",
	"wbc":  "WBC",
	"rbc":  "RBC",
	"hgb":  "HGB",
	"plt":  "PLT",
	"ast":  "AST",
	"alt":  "ALT",
	"gfr":  "GFR",
	"egfr": "eGFR",
	"ckd":  "CKD",
	"copd": "COPD",
	"cad":  "CAD",
	"dm":   "DM",
	"htn":  "HTN",
	"af":   "AF",
	"mi":   "MI",
	"chf":  "CHF",
	"icu":  "ICU",
	"er":   "ER",
	"los":  "LOS",
}

var (
	markerPattern    = regexp.MustCompile(`\*+`)
	specialCharRe    = regexp.MustCompile(`[/(\[\]]`)
	parenSplitRe     = regexp.MustCompile(`[(\[]`)
	camelLowerUpper  = regexp.MustCompile(`([a-z])([A-Z])`)
	camelAcronymWord = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)

	// abbrCamelRes split an abbreviation glued to a lowercase tail, e.g.
	// "HDLcholesterol" to "HDL cholesterol". Ordered for determinism.
	abbrCamelRes = buildAbbrCamelRes()
)

func buildAbbrCamelRes() []*regexp.Regexp {
	keys := make([]string, 0, len(abbreviations))
	for k := range abbreviations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*regexp.Regexp, 0, len(keys))
	for _, k := range keys {
		out = append(out, regexp.MustCompile(`(?i)\b(`+k+`)([a-z])`))
	}
	return out
}

// FormatVariableName renders a raw column name for display: marker
// asterisks stripped, underscores and camelCase split into words, known
// clinical abbreviations canonicalized, short all-caps tokens preserved,
// everything else title-cased. Names containing slashes or brackets take
// a structural path that formats each slash-separated segment while
// leaving the bracketed tail untouched.
func FormatVariableName(name string) string {
	if name == "" {
		return ""
	}

	original := name
	clean := markerPattern.ReplaceAllString(name, "")

	if specialCharRe.MatchString(clean) {
		return formatSpecialName(original, clean)
	}

	clean = strings.ReplaceAll(clean, "_", " ")
	for _, re := range abbrCamelRes {
		clean = re.ReplaceAllString(clean, "$1 $2")
	}
	clean = camelLowerUpper.ReplaceAllString(clean, "$1 $2")
	clean = camelAcronymWord.ReplaceAllString(clean, "$1 $2")

	words := strings.Fields(clean)
	for i, word := range words {
		words[i] = formatWord(word)
	}
	return strings.Join(words, " ")
}

func formatWord(word string) string {
	if canonical, ok := abbreviations[strings.ToLower(word)]; ok {
		return canonical
	}
	if word == strings.ToUpper(word) && len(word) <= 4 {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

// formatSpecialName handles names with slashes or brackets, e.g.
// "Test/Variable (n=100) [%]". Each slash segment's head word is
// formatted; the parenthesized or bracketed tail is kept verbatim, and a
// head spelled exactly "Variable" in the original keeps its casing.
func formatSpecialName(original, clean string) string {
	parts := strings.Split(clean, "/")
	for i, part := range parts {
		head := part
		if loc := parenSplitRe.FindStringIndex(part); loc != nil {
			head = part[:loc[0]]
		}
		head = strings.TrimSpace(head)
		if head == "" {
			continue
		}
		tail := part[strings.Index(part, head)+len(head):]

		if strings.EqualFold(head, "variable") && strings.Contains(original, "Variable") {
			parts[i] = "Variable" + tail
			continue
		}
		if canonical, ok := abbreviations[strings.ToLower(head)]; ok {
			parts[i] = canonical + tail
			continue
		}
		parts[i] = strings.ToUpper(head[:1]) + strings.ToLower(head[1:]) + tail
	}
	return strings.Join(parts, "/")
}

// Patterns deciding whether a row under a main variable is one of its
// category levels rather than a statistics descriptor.
var (
	subItemExcludeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)mean`),
		regexp.MustCompile(`(?i)median`),
		regexp.MustCompile(`±`),
		regexp.MustCompile(`\d+\.\d+\s*±`),
		regexp.MustCompile(`^\d+\.\d+$`),
	}
	subItemIncludeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(Male|Female)$`),
		regexp.MustCompile(`(?i)^(Yes|No)$`),
		regexp.MustCompile(`^\d+$`),
		regexp.MustCompile(`^[A-Za-z]+$`),
		regexp.MustCompile(`(?i)^Sub\s+Item\s+\d+$`),
		regexp.MustCompile(`^[A-Za-z]+\s+[A-Za-z]+(\s+\d+)?$`),
	}
)

// IsCategorySubItem reports whether the row at rowIndex is a category
// level belonging to the nearest preceding main variable. Main variable
// rows are never sub-items; rows with no preceding main variable are not
// sub-items; statistics descriptors (mean, median, ± spreads, bare
// decimals) are excluded even under a parent.
func IsCategorySubItem(row domain.TableRow, allRows []domain.TableRow, rowIndex int) bool {
	if row.IsMainVariable() {
		return false
	}
	varName := strings.TrimSpace(row.Variable())
	if varName == "" {
		return false
	}

	hasParent := false
	for i := rowIndex - 1; i >= 0; i-- {
		if allRows[i].IsMainVariable() {
			hasParent = true
			break
		}
	}
	if !hasParent {
		return false
	}

	for _, re := range subItemExcludeRes {
		if re.MatchString(varName) {
			return false
		}
	}
	for _, re := range subItemIncludeRes {
		if re.MatchString(varName) {
			return true
		}
	}
	return false
}
