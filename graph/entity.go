package graph

import (
	"fmt"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// Source is recorded on every triple produced here.
const Source = "mcskg.generate"

// RuleEntityID returns the dotted entity ID of a concrete rule.
// Format: mcskg.local.rules.rule.template<N>.<uuid>
func RuleEntityID(cr rule.ConcreteRule) string {
	return fmt.Sprintf("mcskg.local.rules.rule.template%d.%s", cr.ID, cr.UUID())
}

// BuildRuleEntity assembles the ingest payload for a concrete rule. The
// statement and query are optional.
func BuildRuleEntity(statement string, cr rule.ConcreteRule, query string, now time.Time) (*RulePayload, error) {
	tmpl, ok := rule.Lookup(cr.ID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", rule.ErrUnknownRuleType, cr.ID)
	}
	fact, err := cr.Resolve()
	if err != nil {
		return nil, err
	}

	entityID := RuleEntityID(cr)
	triple := func(predicate string, object any) message.Triple {
		return message.Triple{
			Subject:    entityID,
			Predicate:  predicate,
			Object:     object,
			Source:     Source,
			Timestamp:  now,
			Confidence: 1.0,
		}
	}

	triples := []message.Triple{
		triple(mcskg.RuleTemplate, cr.ID),
		triple(mcskg.RuleExpression, cr.Expression),
		triple(mcskg.RuleTrigger, tmpl.Trigger),
	}
	if statement != "" {
		triples = append(triples, triple(mcskg.RuleStatement, statement))
	}
	if query != "" {
		triples = append(triples, triple(mcskg.RuleQuery, query))
	}
	for _, slot := range fact.Slots() {
		triples = append(triples, triple(mcskg.SlotPredicate(slot.Kind), slot.Value))
	}

	return &RulePayload{
		ID:         entityID,
		TemplateID: cr.ID,
		Expression: cr.Expression,
		TripleData: triples,
		UpdatedAt:  now,
	}, nil
}
