package translate

import (
	"regexp"
	"strconv"
	"strings"
)

// NumericExtractor pulls a number out of free text near a keyword. The
// translator uses it to recover concrete prices and quantities from decision
// reasoning and debate statements.
type NumericExtractor interface {
	ExtractNear(keyword, text string) (float64, bool)
}

// RegexExtractor is the default extractor. It looks in a short window after
// the keyword, preferring dollar amounts over bare numbers.
type RegexExtractor struct{}

const extractWindow = 48

var (
	dollarPattern = regexp.MustCompile(`\$(\d+(?:\.\d+)?)`)
	numberPattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`)
)

// ExtractNear finds the first number after the keyword's first occurrence,
// within a short window. Dollar amounts win over bare quantities.
func (RegexExtractor) ExtractNear(keyword, text string) (float64, bool) {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(keyword))
	if idx < 0 {
		return 0, false
	}
	start := idx + len(keyword)
	end := start + extractWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[start:end]

	if m := dollarPattern.FindStringSubmatch(window); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := numberPattern.FindStringSubmatch(window); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
