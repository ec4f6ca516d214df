// Package export renders concrete rules and the entity classes they mention
// as RDF, optionally aligned with BFO.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/sparql"
	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// IRI marks a triple object as a resource rather than a literal.
type IRI string

// Triple is one exported statement. Object is an IRI, a string or an int.
type Triple struct {
	Subject   string
	Predicate string
	Object    any
}

// RuleExporter collects concrete rules and serializes them.
type RuleExporter struct {
	profile    ProfileConfig
	namespace  string
	prefixes   map[string]string
	predicates map[mcskg.Relation]string

	subjects []string
	triples  map[string][]Triple
}

// NewRuleExporter creates an exporter for the given profile.
func NewRuleExporter(profile Profile) *RuleExporter {
	return &RuleExporter{
		profile:    GetProfileConfig(profile),
		namespace:  mcskg.Namespace,
		prefixes:   defaultPrefixes(),
		predicates: make(map[mcskg.Relation]string),
		triples:    make(map[string][]Triple),
	}
}

// SetNamespace changes the base IRI for rule and class resources.
func (e *RuleExporter) SetNamespace(ns string) {
	e.namespace = ns
	e.prefixes["ent"] = ns
}

// SetPredicate overrides the predicate IRI aligned for a relation kind. It
// should match the IRI the query translator writes for that relation.
func (e *RuleExporter) SetPredicate(r mcskg.Relation, iri string) {
	e.predicates[r] = iri
}

// RuleIRI returns the resource IRI of a concrete rule.
func (e *RuleExporter) RuleIRI(cr rule.ConcreteRule) string {
	return e.namespace + "rule/" + cr.UUID().String()
}

// Add records a rule, its source statement and its generated query. Either
// of statement and query may be empty.
func (e *RuleExporter) Add(statement string, cr rule.ConcreteRule, query string) error {
	tmpl, ok := rule.Lookup(cr.ID)
	if !ok {
		return fmt.Errorf("%w: id %d", rule.ErrUnknownRuleType, cr.ID)
	}
	fact, err := cr.Resolve()
	if err != nil {
		return fmt.Errorf("export rule %d: %w", cr.ID, err)
	}

	subject := e.RuleIRI(cr)
	if _, seen := e.triples[subject]; seen {
		return nil
	}
	e.add(subject, mcskg.RDFType, IRI(mcskg.ClassConcreteRule))
	e.add(subject, mcskg.GetPredicateIRI(mcskg.RuleTemplate), cr.ID)
	e.add(subject, mcskg.GetPredicateIRI(mcskg.RuleExpression), cr.Expression)
	e.add(subject, mcskg.GetPredicateIRI(mcskg.RuleTrigger), tmpl.Trigger)
	if statement != "" {
		e.add(subject, mcskg.GetPredicateIRI(mcskg.RuleStatement), statement)
	}
	if query != "" {
		e.add(subject, mcskg.GetPredicateIRI(mcskg.RuleQuery), query)
	}

	for _, slot := range fact.Slots() {
		class := e.namespace + sparql.FormatSegment(slot.Value)
		e.add(subject, mcskg.PropMentions, IRI(class))
		e.addClass(class, slot)
	}
	if super, ok := e.profile.SuperProperty(tmpl.Relation); ok {
		e.addProperty(tmpl.Relation, super)
	}
	return nil
}

// addProperty aligns a relation's predicate with a BFO relation.
func (e *RuleExporter) addProperty(r mcskg.Relation, super string) {
	predicate, ok := e.predicates[r]
	if !ok {
		predicate, ok = mcskg.PredicateIRI(r)
	}
	if !ok || predicate == super {
		return
	}
	if _, seen := e.triples[predicate]; seen {
		return
	}
	e.add(predicate, mcskg.RDFType, IRI(mcskg.OWLObjectProperty))
	e.add(predicate, mcskg.RDFSSubPropertyOf, IRI(super))
}

func (e *RuleExporter) addClass(class string, slot rule.Slot) {
	if _, seen := e.triples[class]; seen {
		return
	}
	e.add(class, mcskg.RDFType, IRI(mcskg.OWLClass))
	e.add(class, mcskg.RDFSLabel, slot.Value)
	if super, ok := e.profile.SuperClass(slot.Kind); ok {
		e.add(class, mcskg.RDFSSubClassOf, IRI(super))
		e.addBFOClass(super)
	}
}

func (e *RuleExporter) addBFOClass(class string) {
	if _, seen := e.triples[class]; seen {
		return
	}
	e.add(class, mcskg.RDFType, IRI(mcskg.OWLClass))
	if label, ok := BFOClassLabels[class]; ok {
		e.add(class, mcskg.RDFSLabel, label)
	}
}

func (e *RuleExporter) add(subject, predicate string, object any) {
	if _, ok := e.triples[subject]; !ok {
		e.subjects = append(e.subjects, subject)
	}
	e.triples[subject] = append(e.triples[subject], Triple{Subject: subject, Predicate: predicate, Object: object})
}

// Triples returns every collected triple grouped by subject in insertion order.
func (e *RuleExporter) Triples() []Triple {
	var out []Triple
	for _, s := range e.subjects {
		out = append(out, e.triples[s]...)
	}
	return out
}

// Export serializes the collected rules in the given format.
func (e *RuleExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (e *RuleExporter) toTurtle() string {
	w := &turtleWriter{prefixes: e.prefixes}
	w.writePrefixes()
	for _, s := range e.subjects {
		w.writeSubject(s, e.triples[s])
	}
	return w.String()
}

func (e *RuleExporter) toNTriples() string {
	w := &nTriplesWriter{}
	for _, t := range e.Triples() {
		w.writeTriple(t)
	}
	return w.String()
}

func (e *RuleExporter) toJSONLD() (string, error) {
	doc := JSONLDDocument{
		Context: make(map[string]any, len(e.prefixes)),
		Graph:   make([]JSONLDNode, 0, len(e.subjects)),
	}
	for k, v := range e.prefixes {
		doc.Context[k] = v
	}

	for _, s := range e.subjects {
		node := JSONLDNode{ID: s, Properties: make(map[string]any)}
		for _, t := range e.triples[s] {
			if t.Predicate == mcskg.RDFType {
				if iri, ok := t.Object.(IRI); ok {
					node.Type = append(node.Type, string(iri))
					continue
				}
			}
			value := jsonldValue(t.Object)
			switch prev := node.Properties[t.Predicate].(type) {
			case nil:
				node.Properties[t.Predicate] = value
			case []any:
				node.Properties[t.Predicate] = append(prev, value)
			default:
				node.Properties[t.Predicate] = []any{prev, value}
			}
		}
		doc.Graph = append(doc.Graph, node)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data), nil
}
