package script

import (
	"strings"

	dErrors "smartstore/pkg/domain-errors"
)

// Tokenize splits a script line into words. Double quotes group words, and
// an unquoted # starts a comment running to the end of the line.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		inQuote bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, current.String())
			current.Reset()
			started = false
		}
	}
	for _, r := range line {
		switch {
		case inQuote && r == '"':
			inQuote = false
		case inQuote:
			current.WriteRune(r)
		case r == '"':
			inQuote = true
			started = true
		case r == '#':
			flush()
			return tokens, nil
		case r == ' ' || r == '\t' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, dErrors.New(dErrors.CodeValidation, "unterminated quote")
	}
	flush()
	return tokens, nil
}
