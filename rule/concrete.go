package rule

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

var ruleSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(mcskg.Namespace+"rule"))

// ConcreteRule is a rule template with its placeholders replaced by entity
// names taken from one statement. ID always identifies the originating
// template; the expression alone does not.
type ConcreteRule struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`

	// Fact holds the extracted names. It is nil for rules rebuilt from an
	// (id, expression) pair. When set it must agree with the expression.
	Fact Fact `json:"-"`
}

func (r ConcreteRule) String() string { return r.Expression }

// UUID returns an identifier derived from the id and expression, so equal
// rules map to the same graph entity.
func (r ConcreteRule) UUID() uuid.UUID {
	return uuid.NewSHA1(ruleSpace, []byte(strconv.Itoa(r.ID)+"\x00"+r.Expression))
}

// Resolve derives the rule's Fact from its id and expression. A Fact already
// attached to the rule is only checked against the parsed one, so the result
// never depends on anything but the (id, expression) pair.
func (r ConcreteRule) Resolve() (Fact, error) {
	if r.Fact != nil && r.Fact.TemplateID() != r.ID {
		return nil, fmt.Errorf("%w: id %d carries a template %d fact", ErrUnknownRuleType, r.ID, r.Fact.TemplateID())
	}
	fact, err := ParseFact(r.ID, r.Expression)
	if err != nil {
		return nil, err
	}
	if r.Fact != nil && r.Fact != fact {
		return nil, &ParseError{TemplateID: r.ID, Expression: r.Expression, Reason: "expression disagrees with its extracted entities"}
	}
	return fact, nil
}

// Specialize extracts the template's slot values from the statement and
// substitutes them into the template expression.
func Specialize(t Template, statement string) (ConcreteRule, error) {
	values, err := Extract(t.ID, statement)
	if err != nil {
		return ConcreteRule{}, err
	}
	fact, err := newFact(t.ID, values)
	if err != nil {
		return ConcreteRule{}, err
	}
	return ConcreteRule{
		ID:         t.ID,
		Expression: t.Substitute(values),
		Fact:       fact,
	}, nil
}
