// Package mcskg defines the vocabulary used when turning manufacturing
// common-sense knowledge (MCSK) statements into knowledge graph updates.
//
// The package provides three layers:
//
//   - Namespace and ontology IRIs. Entity classes live under Namespace
//     (http://www.mcskg.enit.fr/); relation predicates come from the
//     Industrial Ontology Foundry core, BFO and an example namespace.
//   - Relation kinds and their default predicate IRIs. Translators look up
//     predicates by Relation so deployments can swap the ontology without
//     touching query generation.
//   - Dotted graph predicates (mcskg.rule.*, mcskg.slot.*) registered with
//     the semstreams vocabulary registry, used when concrete rules are
//     published to the graph ingest stream.
//
// # Relation predicates
//
//	Relation                  Default IRI
//	is_output_of              https://spec.industrialontologies.org/ontology/core/Core/isOutputOf
//	precedes                  http://purl.obolibrary.org/obo/BFO_0000063
//	participates_at_some_time http://purl.obolibrary.org/obo/BFO_0000056
//	made_of                   https://spec.industrialontologies.org/ontology/core/Core/isOutputOf
//	is_input_of               http://example.org/isInputOf
//	part_of                   http://example.org/partOf
//	produced_by               http://example.org/isOutputOf
//
// made_of intentionally shares the isOutputOf IRI; see DefaultPredicateIRIs.
package mcskg
