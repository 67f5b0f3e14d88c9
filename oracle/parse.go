package oracle

import (
	"strconv"
	"strings"
)

// ParsePosition extracts a position from the structured-text response format
// (STANCE:/POSITION:/ARGUMENTS:/CONFIDENCE:/REASONING:). The parser is
// permissive: missing or malformed fields keep their defaults rather than
// failing the whole response.
func ParsePosition(text string) Position {
	pos := Position{
		Stance:     StanceNeutral,
		Confidence: 0.7,
	}

	section := ""
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "STANCE:"):
			section = ""
			s := Stance(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "STANCE:"))))
			if s.Valid() {
				pos.Stance = s
			}
		case strings.HasPrefix(line, "POSITION:"):
			section = ""
			pos.Statement = strings.TrimSpace(strings.TrimPrefix(line, "POSITION:"))
		case strings.HasPrefix(line, "ARGUMENTS:"):
			section = "arguments"
			if arg := strings.TrimSpace(strings.TrimPrefix(line, "ARGUMENTS:")); arg != "" {
				pos.Arguments = append(pos.Arguments, arg)
			}
		case strings.HasPrefix(line, "CONFIDENCE:"):
			section = ""
			raw := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
			if conf, err := strconv.ParseFloat(raw, 64); err == nil && conf >= 0 && conf <= 1 {
				pos.Confidence = conf
			}
		case strings.HasPrefix(line, "REASONING:"):
			section = "reasoning"
			pos.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		case section == "arguments" && strings.HasPrefix(line, "-"):
			pos.Arguments = append(pos.Arguments, strings.TrimSpace(line[1:]))
		case section == "reasoning":
			if pos.Reasoning != "" {
				pos.Reasoning += " " + line
			} else {
				pos.Reasoning = line
			}
		}
	}
	return pos
}
