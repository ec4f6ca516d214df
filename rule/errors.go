package rule

import (
	"errors"
	"fmt"
)

// Input errors. All of them are permanent for the statement or rule that
// produced them; callers processing batches skip the item and continue.
var (
	// ErrUnrecognizedStatement is returned when no trigger phrase matches.
	ErrUnrecognizedStatement = errors.New("unrecognized MCSK statement format")

	// ErrExtraction is returned when positional entity extraction fails.
	ErrExtraction = errors.New("entity extraction failed")

	// ErrUnknownRuleType is returned when a concrete rule does not carry the
	// relation its template id requires.
	ErrUnknownRuleType = errors.New("unknown rule type in concrete rule")

	// ErrMalformedExpression is returned when a concrete expression cannot be
	// split back into its entity atoms.
	ErrMalformedExpression = errors.New("malformed rule expression")
)

// ExtractionError describes which slot of which template could not be filled.
type ExtractionError struct {
	TemplateID int
	Slot       string
	Reason     string
}

func (e *ExtractionError) Error() string {
	if e.Slot == "" {
		return fmt.Sprintf("%s: template %d: %s", ErrExtraction, e.TemplateID, e.Reason)
	}
	return fmt.Sprintf("%s: template %d slot %s: %s", ErrExtraction, e.TemplateID, e.Slot, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return ErrExtraction }

// ParseError describes a concrete expression that could not be re-parsed.
type ParseError struct {
	TemplateID int
	Expression string
	Reason     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: template %d: %s", ErrMalformedExpression, e.TemplateID, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformedExpression }

// IsInputError reports whether err is one of the per-item input failures.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnrecognizedStatement) ||
		errors.Is(err, ErrExtraction) ||
		errors.Is(err, ErrUnknownRuleType) ||
		errors.Is(err, ErrMalformedExpression)
}
