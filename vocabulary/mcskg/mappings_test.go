package mcskg_test

import (
	"strings"
	"testing"

	"github.com/c360studio/mcskg/vocabulary/mcskg"
	"github.com/c360studio/semstreams/vocabulary/bfo"
)

func TestDefaultPredicateIRIs(t *testing.T) {
	tests := []struct {
		relation mcskg.Relation
		want     string
	}{
		{mcskg.RelationIsOutputOf, "https://spec.industrialontologies.org/ontology/core/Core/isOutputOf"},
		{mcskg.RelationPrecedes, "http://purl.obolibrary.org/obo/BFO_0000063"},
		{mcskg.RelationParticipatesAtSomeTime, "http://purl.obolibrary.org/obo/BFO_0000056"},
		{mcskg.RelationMadeOf, "https://spec.industrialontologies.org/ontology/core/Core/isOutputOf"},
		{mcskg.RelationIsInputOf, "http://example.org/isInputOf"},
		{mcskg.RelationPartOf, "http://example.org/partOf"},
		{mcskg.RelationProducedBy, "http://example.org/isOutputOf"},
	}

	for _, tt := range tests {
		t.Run(string(tt.relation), func(t *testing.T) {
			got, ok := mcskg.PredicateIRI(tt.relation)
			if !ok {
				t.Fatalf("no predicate for %s", tt.relation)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEveryRelationHasPredicate(t *testing.T) {
	for _, r := range mcskg.Relations() {
		if _, ok := mcskg.DefaultPredicateIRIs[r]; !ok {
			t.Errorf("relation %s has no default predicate", r)
		}
	}
	if len(mcskg.Relations()) != len(mcskg.DefaultPredicateIRIs) {
		t.Errorf("relations and predicate table differ in size")
	}
}

func TestBFOClassMap(t *testing.T) {
	if mcskg.BFOClassMap[mcskg.SlotProcess] != bfo.Process {
		t.Errorf("process slot should map to bfo:Process")
	}
	if mcskg.BFOClassMap[mcskg.SlotMachine] != bfo.IndependentContinuant {
		t.Errorf("machine slot should map to bfo:IndependentContinuant")
	}
}

func TestNamespaceShape(t *testing.T) {
	if !strings.HasSuffix(mcskg.Namespace, "/") {
		t.Errorf("namespace must end with a slash: %s", mcskg.Namespace)
	}
	if !strings.HasPrefix(mcskg.TermNamespace, mcskg.Namespace) {
		t.Errorf("term namespace should live under %s", mcskg.Namespace)
	}
}
