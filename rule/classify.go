package rule

import (
	"fmt"
	"strings"
)

// Classify returns the first template, in priority order, whose trigger phrase
// occurs in the statement. Matching is a case-sensitive substring test.
func Classify(statement string) (Template, error) {
	for _, t := range templates {
		if strings.Contains(statement, t.Trigger) {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnrecognizedStatement, statement)
}
