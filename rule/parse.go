package rule

import (
	"fmt"
	"regexp"
	"strings"
)

// expressionPatterns holds, per template id, a pattern that matches exactly
// the expressions Substitute can produce for that template. Each placeholder
// atom becomes a capture group for the entity name bound to its variable.
var expressionPatterns = compileExpressionPatterns()

type expressionPattern struct {
	re    *regexp.Regexp
	slots []string
}

func compileExpressionPatterns() map[int]expressionPattern {
	out := make(map[int]expressionPattern, len(templates))
	for _, t := range templates {
		out[t.ID] = compileExpressionPattern(t)
	}
	return out
}

func compileExpressionPattern(t Template) expressionPattern {
	quoted := regexp.QuoteMeta(t.Expression)

	// Order groups by position in the expression so submatches line up
	// with slots.
	type hole struct {
		at   int
		slot string
	}
	holes := make([]hole, 0, len(t.Placeholders))
	pairs := make([]string, 0, 2*len(t.Placeholders))
	for _, p := range t.Placeholders {
		atom := regexp.QuoteMeta(p.Atom)
		holes = append(holes, hole{at: strings.Index(quoted, atom), slot: p.Slot})
		pairs = append(pairs, atom, `(.+?)`+regexp.QuoteMeta("("+p.Var+")"))
	}
	for i := 1; i < len(holes); i++ {
		for j := i; j > 0 && holes[j].at < holes[j-1].at; j-- {
			holes[j], holes[j-1] = holes[j-1], holes[j]
		}
	}
	slots := make([]string, len(holes))
	for i, h := range holes {
		slots[i] = h.slot
	}

	body := strings.NewReplacer(pairs...).Replace(quoted)
	return expressionPattern{re: regexp.MustCompile(`(?s)^` + body + `$`), slots: slots}
}

// ParseFact rebuilds the Fact of a concrete rule from its id and expression.
// The id selects the template; the expression must be that template with
// every placeholder replaced by a non-empty entity name. Names are recovered
// whole, parentheses and spaces included, and substituting them back must
// reproduce the expression exactly.
func ParseFact(id int, expression string) (Fact, error) {
	t, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: template %d", ErrUnknownRuleType, id)
	}
	if !strings.Contains(expression, t.Predicate) {
		return nil, fmt.Errorf("%w: template %d expects %s", ErrUnknownRuleType, id, t.Predicate)
	}

	pattern := expressionPatterns[id]
	m := pattern.re.FindStringSubmatch(expression)
	if m == nil {
		return nil, &ParseError{TemplateID: id, Expression: expression, Reason: "expression does not follow the template"}
	}

	values := make(map[string]string, len(pattern.slots))
	for i, slot := range pattern.slots {
		values[slot] = m[i+1]
	}
	if t.Substitute(values) != expression {
		return nil, &ParseError{TemplateID: id, Expression: expression, Reason: "entity names are ambiguous"}
	}
	return newFact(id, values)
}
