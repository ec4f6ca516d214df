package sparql

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// FreshURIMode selects how new node IRIs are minted.
type FreshURIMode string

const (
	// FreshSTRUUID lets the SPARQL endpoint mint the suffix with STRUUID().
	FreshSTRUUID FreshURIMode = "struuid"

	// FreshUUID mints a random UUID suffix at translation time.
	FreshUUID FreshURIMode = "uuid"
)

// ParseFreshURIMode validates a fresh-URI mode name.
func ParseFreshURIMode(s string) (FreshURIMode, error) {
	switch m := FreshURIMode(s); m {
	case FreshSTRUUID, FreshUUID:
		return m, nil
	}
	return "", fmt.Errorf("unknown fresh URI mode %q (want %s or %s)", s, FreshSTRUUID, FreshUUID)
}

// Option configures a Translator.
type Option func(*Translator)

// WithNamespace sets the base IRI for entity classes and minted nodes.
func WithNamespace(ns string) Option {
	return func(t *Translator) { t.namespace = ns }
}

// WithPredicate overrides the predicate IRI used for a relation kind.
func WithPredicate(r mcskg.Relation, iri string) Option {
	return func(t *Translator) { t.predicates[r] = iri }
}

// WithFreshURI selects the fresh-URI strategy.
func WithFreshURI(mode FreshURIMode) Option {
	return func(t *Translator) { t.fresh = mode }
}

// WithUUIDSource replaces the UUID generator used by FreshUUID.
func WithUUIDSource(fn func() uuid.UUID) Option {
	return func(t *Translator) { t.newUUID = fn }
}

// WithPrefixes toggles the PREFIX header and prefixed rdf:type.
func WithPrefixes(enabled bool) Option {
	return func(t *Translator) { t.prefixes = enabled }
}

// Translator renders concrete rules as SPARQL updates. It is safe for
// concurrent use once constructed.
type Translator struct {
	namespace  string
	predicates map[mcskg.Relation]string
	fresh      FreshURIMode
	newUUID    func() uuid.UUID
	prefixes   bool
}

// NewTranslator returns a Translator using the mcskg namespace and the
// default predicate table unless overridden.
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{
		namespace:  mcskg.Namespace,
		predicates: make(map[mcskg.Relation]string, len(mcskg.DefaultPredicateIRIs)),
		fresh:      FreshSTRUUID,
		newUUID:    uuid.New,
		prefixes:   true,
	}
	for r, iri := range mcskg.DefaultPredicateIRIs {
		t.predicates[r] = iri
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var defaultTranslator = NewTranslator()

// Translate renders a concrete rule with the default translator.
func Translate(cr rule.ConcreteRule) (string, error) {
	return defaultTranslator.Translate(cr)
}

// Translate renders the concrete rule as query text.
func (t *Translator) Translate(cr rule.ConcreteRule) (string, error) {
	u, err := t.Plan(cr)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Plan builds the update for a concrete rule. The rule id selects the
// translation and the entity names are parsed from the expression, so the
// update depends only on the (id, expression) pair.
func (t *Translator) Plan(cr rule.ConcreteRule) (Update, error) {
	tmpl, ok := rule.Lookup(cr.ID)
	if !ok {
		return Update{}, fmt.Errorf("%w: id %d", rule.ErrUnknownRuleType, cr.ID)
	}
	if !strings.Contains(cr.Expression, tmpl.Predicate) {
		return Update{}, fmt.Errorf("%w: id %d expects %s", rule.ErrUnknownRuleType, cr.ID, tmpl.Predicate)
	}
	fact, err := cr.Resolve()
	if err != nil {
		return Update{}, err
	}
	return t.PlanFact(fact)
}

// PlanFact builds the update for a typed fact.
func (t *Translator) PlanFact(fact rule.Fact) (Update, error) {
	if _, err := ParseFreshURIMode(string(t.fresh)); err != nil {
		return Update{}, err
	}

	b := t.newBuilder()
	switch f := fact.(type) {
	case rule.ProductOutput:
		b.existing("x", f.Product)
		b.mint("y", f.Process)
		b.edge("x", mcskg.RelationIsOutputOf, "y")
	case rule.ProcessPrecedence:
		b.existing("x", f.Preceding)
		b.mint("y", f.Succeeding)
		b.edge("y", mcskg.RelationPrecedes, "x")
	case rule.MachineParticipation:
		b.existing("x", f.Process)
		b.mint("y", f.Machine)
		b.edge("y", mcskg.RelationParticipatesAtSomeTime, "x")
	case rule.ProductMaterial:
		b.existing("x", f.Product)
		b.mint("y", f.Material)
		b.edge("y", mcskg.RelationMadeOf, "x")
	case rule.AssemblyOutput:
		b.existing("x", f.Assembly)
		b.mint("y", f.AssemblyProcess)
		b.edge("x", mcskg.RelationIsOutputOf, "y")
	case rule.AssemblyInput:
		b.existing("x", f.Assembly)
		b.mint("y", f.Component)
		b.edge("y", mcskg.RelationIsInputOf, "x")
	case rule.AssemblySteps:
		b.existing("x", f.Assembly)
		b.declare("y", f.Picking)
		b.declare("z", f.Fixing)
		b.edge("y", mcskg.RelationPartOf, "x")
		b.edge("z", mcskg.RelationPartOf, "x")
		b.bind("y", f.Picking)
		b.bind("z", f.Fixing)
	case rule.JointProduction:
		b.declare("p1", f.Process1)
		b.declare("p2", f.Process2)
		b.declare("y", f.Component2)
		b.declare("x", f.Component1)
		b.edge("y", mcskg.RelationProducedBy, "p1")
		b.edge("x", mcskg.RelationProducedBy, "p2")
		b.bind("p1", f.Process1)
		b.bind("p2", f.Process2)
		b.bind("y", f.Component2)
		// TODO: confirm with the ontology owners whether ?x should be bound
		// here; ?x1 leaves the first component's INSERT triples unbound.
		b.bind("x1", f.Component1)
	default:
		return Update{}, fmt.Errorf("%w: %T", rule.ErrUnknownRuleType, fact)
	}
	return b.u, nil
}

// FormatSegment turns an entity name into an IRI path segment by replacing
// spaces with underscores. No other escaping is applied.
func FormatSegment(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// ClassIRI returns the class IRI for an entity name under the namespace.
func (t *Translator) ClassIRI(name string) string {
	return t.namespace + FormatSegment(name)
}

// Predicate returns the configured predicate IRI for a relation kind.
func (t *Translator) Predicate(r mcskg.Relation) string {
	return t.predicates[r]
}

type builder struct {
	t *Translator
	u Update
}

func (t *Translator) newBuilder() *builder {
	b := &builder{t: t}
	if t.prefixes {
		b.u.Prefixes = []Prefix{{Name: "rdf", IRI: mcskg.RDFNamespace}}
	}
	return b
}

// existing matches a node of the named class already in the graph.
func (b *builder) existing(v, name string) {
	b.u.Where = append(b.u.Where, Pattern{Var(v), IRI(mcskg.RDFType), IRI(b.t.ClassIRI(name))})
}

// declare asserts the class of a new node.
func (b *builder) declare(v, name string) {
	b.u.Insert = append(b.u.Insert, Pattern{Var(v), IRI(mcskg.RDFType), IRI(b.t.ClassIRI(name))})
}

// bind mints a fresh IRI for v derived from the class name.
func (b *builder) bind(v, name string) {
	base := b.t.namespace + FormatSegment(name) + "_"
	var expr string
	switch b.t.fresh {
	case FreshUUID:
		expr = "<" + base + b.t.newUUID().String() + ">"
	default:
		expr = `URI(CONCAT("` + base + `", STRUUID()))`
	}
	b.u.Binds = append(b.u.Binds, Bind{Var: v, Expr: expr})
}

func (b *builder) mint(v, name string) {
	b.declare(v, name)
	b.bind(v, name)
}

func (b *builder) edge(s string, r mcskg.Relation, o string) {
	b.u.Insert = append(b.u.Insert, Pattern{Var(s), IRI(b.t.Predicate(r)), Var(o)})
}
