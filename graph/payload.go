package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/mcskg/rule"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      RuleEntityType.Domain,
		Category:    RuleEntityType.Category,
		Version:     RuleEntityType.Version,
		Description: "Concrete rule entity with its triples for graph ingestion",
		Factory:     func() any { return &RulePayload{} },
	})
	if err != nil {
		panic("failed to register RulePayload: " + err.Error())
	}
}

// RuleEntityType is the message type for concrete rule entity payloads.
var RuleEntityType = message.Type{Domain: "mcskg", Category: "rule", Version: "v1"}

// RulePayload carries one concrete rule as a graph entity. The rule's
// (template, expression) pair travels beside the triples so consumers can
// rebuild the rule without scanning predicates.
type RulePayload struct {
	ID         string           `json:"id"`
	TemplateID int              `json:"template_id"`
	Expression string           `json:"expression"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *RulePayload) EntityID() string          { return p.ID }
func (p *RulePayload) Triples() []message.Triple { return p.TripleData }
func (p *RulePayload) Schema() message.Type      { return RuleEntityType }

// ConcreteRule returns the rule the payload describes.
func (p *RulePayload) ConcreteRule() rule.ConcreteRule {
	return rule.ConcreteRule{ID: p.TemplateID, Expression: p.Expression}
}

// Validate checks that the entity ID is the one derived from the carried
// rule and that the rule still parses.
func (p *RulePayload) Validate() error {
	if p.ID == "" {
		return errors.New("entity ID is required")
	}
	if len(p.TripleData) == 0 {
		return errors.New("entity has no triples")
	}
	cr := p.ConcreteRule()
	if want := RuleEntityID(cr); p.ID != want {
		return fmt.Errorf("entity ID %s does not match rule %s", p.ID, want)
	}
	if _, err := cr.Resolve(); err != nil {
		return err
	}
	return nil
}
