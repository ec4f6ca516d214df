package mcskg

import (
	"github.com/c360studio/semstreams/vocabulary/bfo"
)

// Relation identifies the kind of edge a concrete rule asserts between two
// entities. Query translators resolve a Relation to a predicate IRI.
type Relation string

// Relation kinds, one per distinct edge emitted by the rule templates.
const (
	// RelationIsOutputOf links a product or assembly to the process producing it.
	RelationIsOutputOf Relation = "is_output_of"
	// RelationPrecedes links a succeeding process to the process it follows.
	RelationPrecedes Relation = "precedes"
	// RelationParticipatesAtSomeTime links a machine to the process it takes part in.
	RelationParticipatesAtSomeTime Relation = "participates_at_some_time"
	// RelationMadeOf links a material to the product made of it.
	RelationMadeOf Relation = "made_of"
	// RelationIsInputOf links a component to the assembly consuming it.
	RelationIsInputOf Relation = "is_input_of"
	// RelationPartOf links an assembly step to its assembly.
	RelationPartOf Relation = "part_of"
	// RelationProducedBy links a component to the process producing it.
	RelationProducedBy Relation = "produced_by"
)

// Relations returns every relation kind in template order.
func Relations() []Relation {
	return []Relation{
		RelationIsOutputOf,
		RelationPrecedes,
		RelationParticipatesAtSomeTime,
		RelationMadeOf,
		RelationIsInputOf,
		RelationPartOf,
		RelationProducedBy,
	}
}

// DefaultPredicateIRIs maps relation kinds to the predicate IRIs used by the
// manufacturing knowledge graph.
//
// RelationMadeOf reuses IOFIsOutputOf. That is what existing graphs contain for
// "made of" statements; override it through configuration once a part-whole
// predicate is agreed on.
var DefaultPredicateIRIs = map[Relation]string{
	RelationIsOutputOf:             IOFIsOutputOf,
	RelationPrecedes:               BFOPrecedes,
	RelationParticipatesAtSomeTime: BFOParticipatesAtSomeTime,
	RelationMadeOf:                 IOFIsOutputOf,
	RelationIsInputOf:              ExampleIsInputOf,
	RelationPartOf:                 ExamplePartOf,
	RelationProducedBy:             ExampleIsOutputOf,
}

// PredicateIRI returns the default predicate IRI for a relation.
func PredicateIRI(r Relation) (string, bool) {
	iri, ok := DefaultPredicateIRIs[r]
	return iri, ok
}

// StandardRelationMap aligns relation kinds with BFO relations where one
// exists. Used for documentation and export only; queries keep the graph's
// own predicates.
var StandardRelationMap = map[Relation]string{
	RelationPrecedes: bfo.PrecedesTemporally,
	RelationPartOf:   bfo.PartOf,
}

// SlotKind classifies an extracted entity name by the role it plays in a
// rule template.
type SlotKind string

// Slot kinds appearing in the rule templates.
const (
	SlotProduct         SlotKind = "product"
	SlotProcess         SlotKind = "process"
	SlotMachine         SlotKind = "machine"
	SlotMaterial        SlotKind = "material"
	SlotAssembly        SlotKind = "assembly"
	SlotAssemblyProcess SlotKind = "assembly_process"
	SlotComponent       SlotKind = "component"
)

// BFOClassMap maps slot kinds to BFO classes.
// Use this for BFO profile RDF export.
var BFOClassMap = map[SlotKind]string{
	// Occurrents
	SlotProcess:         bfo.Process,
	SlotAssemblyProcess: bfo.Process,

	// Material things
	SlotProduct:   bfo.IndependentContinuant,
	SlotMachine:   bfo.IndependentContinuant,
	SlotMaterial:  bfo.IndependentContinuant,
	SlotAssembly:  bfo.IndependentContinuant,
	SlotComponent: bfo.IndependentContinuant,
}
