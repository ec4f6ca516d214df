// Package rule turns MCSK statements into concrete first-order logic rules.
//
// A statement is classified against eight fixed rule templates by trigger
// phrase, then its entity names are pulled out by position and substituted
// into the template's placeholders. The result is a ConcreteRule carrying
// both the substituted expression and a typed Fact with the extracted names.
package rule

import (
	"slices"
	"strings"

	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// Template ids. The numbering is part of the public contract: rule ids travel
// with concrete expressions to downstream translators.
const (
	TemplateProductProcess       = 1
	TemplateProcessPrecedence    = 2
	TemplateMachineParticipation = 3
	TemplateProductMaterial      = 4
	TemplateAssemblyOutput       = 5
	TemplateAssemblyInput        = 6
	TemplateAssemblySteps        = 7
	TemplateJointProduction      = 8
)

// Placeholder is one substitutable entity atom of a template expression.
type Placeholder struct {
	// Slot names the extracted value that replaces the atom's predicate.
	Slot string
	// Kind is the role of the entity in the manufacturing ontology.
	Kind mcskg.SlotKind
	// Atom is the literal text in the expression, e.g. "product(x)".
	Atom string
	// Var is the logical variable bound by the atom.
	Var string
}

// Template is a first-order logic rule schema with named placeholders.
type Template struct {
	ID         int
	Name       string
	Trigger    string
	Relation   mcskg.Relation
	Predicate  string
	Expression string

	Placeholders []Placeholder
}

func (t Template) String() string { return t.Expression }

// Substitute replaces each placeholder atom with the slot value bound to it.
// Values are inserted verbatim, spaces included. Placeholders without a value
// are left untouched.
func (t Template) Substitute(values map[string]string) string {
	pairs := make([]string, 0, 2*len(t.Placeholders))
	for _, p := range t.Placeholders {
		v, ok := values[p.Slot]
		if !ok {
			continue
		}
		pairs = append(pairs, p.Atom, v+"("+p.Var+")")
	}
	return strings.NewReplacer(pairs...).Replace(t.Expression)
}

func ph(slot string, kind mcskg.SlotKind, predicate, variable string) Placeholder {
	return Placeholder{Slot: slot, Kind: kind, Atom: predicate + "(" + variable + ")", Var: variable}
}

// templates is ordered by classification priority.
var templates = []Template{
	{
		ID:         TemplateProductProcess,
		Name:       "product-process-output",
		Trigger:    "result",
		Relation:   mcskg.RelationIsOutputOf,
		Predicate:  "isOutputOf",
		Expression: "∀x (product(x) → ∃y (process(y) ∧ isOutputOf(x, y)))",
		Placeholders: []Placeholder{
			ph("product", mcskg.SlotProduct, "product", "x"),
			ph("process", mcskg.SlotProcess, "process", "y"),
		},
	},
	{
		ID:         TemplateProcessPrecedence,
		Name:       "process-precedence",
		Trigger:    "After",
		Relation:   mcskg.RelationPrecedes,
		Predicate:  "precedes",
		Expression: "∀x (process(x) → ∃y (process(y) ∧ precedes(x, y)))",
		Placeholders: []Placeholder{
			ph("preceding", mcskg.SlotProcess, "process", "x"),
			ph("succeeding", mcskg.SlotProcess, "process", "y"),
		},
	},
	{
		ID:         TemplateMachineParticipation,
		Name:       "machine-participation",
		Trigger:    "involves",
		Relation:   mcskg.RelationParticipatesAtSomeTime,
		Predicate:  "participatesAtSomeTime",
		Expression: "∀x (process(x) → ∃y (machine(y) ∧ participatesAtSomeTime(y, x)))",
		Placeholders: []Placeholder{
			ph("process", mcskg.SlotProcess, "process", "x"),
			ph("machine", mcskg.SlotMachine, "machine", "y"),
		},
	},
	{
		ID:         TemplateProductMaterial,
		Name:       "product-material",
		Trigger:    "made of",
		Relation:   mcskg.RelationMadeOf,
		Predicate:  "partOf",
		Expression: "∀x (product(x) → ∃y (material(y) ∧ partOf(y, x)))",
		Placeholders: []Placeholder{
			ph("product", mcskg.SlotProduct, "product", "x"),
			ph("material", mcskg.SlotMaterial, "material", "y"),
		},
	},
	{
		ID:         TemplateAssemblyOutput,
		Name:       "assembly-output",
		Trigger:    "is output of",
		Relation:   mcskg.RelationIsOutputOf,
		Predicate:  "isOutputOf",
		Expression: "∀x (assembly(x) → ∃y (assemblyProcess(y) ∧ isOutputOf(x, y)))",
		Placeholders: []Placeholder{
			ph("assembly", mcskg.SlotAssembly, "assembly", "x"),
			ph("assembly_process", mcskg.SlotAssemblyProcess, "assemblyProcess", "y"),
		},
	},
	{
		ID:         TemplateAssemblyInput,
		Name:       "assembly-input",
		Trigger:    "is the input of",
		Relation:   mcskg.RelationIsInputOf,
		Predicate:  "isInputOf",
		Expression: "∀x (assembly(x) → ∃y (component(y) ∧ isInputOf(y, x)))",
		Placeholders: []Placeholder{
			ph("assembly", mcskg.SlotAssembly, "assembly", "x"),
			ph("component", mcskg.SlotComponent, "component", "y"),
		},
	},
	{
		ID:         TemplateAssemblySteps,
		Name:       "assembly-steps",
		Trigger:    "includes",
		Relation:   mcskg.RelationPartOf,
		Predicate:  "partOf",
		Expression: "∀x (assembly(x) → ∃y,z (picking(y) ∧ fixing(z) ∧ partOf(y, x) ∧ partOf(z, x)))",
		Placeholders: []Placeholder{
			ph("assembly", mcskg.SlotAssembly, "assembly", "x"),
			ph("picking", mcskg.SlotProcess, "picking", "y"),
			ph("fixing", mcskg.SlotProcess, "fixing", "z"),
		},
	},
	{
		ID:         TemplateJointProduction,
		Name:       "joint-production",
		Trigger:    "is produced by",
		Relation:   mcskg.RelationProducedBy,
		Predicate:  "isOutputOf",
		Expression: "∀x,y (component1(x) ∧ component2(y) ∧ process(p1) ∧ isOutputOf(y, p1) ∧ process(p2) ∧ isOutputOf(x, p2))",
		Placeholders: []Placeholder{
			ph("component1", mcskg.SlotComponent, "component1", "x"),
			ph("component2", mcskg.SlotComponent, "component2", "y"),
			ph("process1", mcskg.SlotProcess, "process", "p1"),
			ph("process2", mcskg.SlotProcess, "process", "p2"),
		},
	},
}

// Templates returns a copy of the registry in classification priority
// order. Changes to the result do not reach the registry.
func Templates() []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = t.clone()
	}
	return out
}

// Lookup returns a copy of the template with the given id.
func Lookup(id int) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Template{}, false
}

func (t Template) clone() Template {
	t.Placeholders = slices.Clone(t.Placeholders)
	return t
}
