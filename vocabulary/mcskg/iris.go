package mcskg

// Namespace is the base IRI for manufacturing entity classes and minted instances.
const Namespace = "http://www.mcskg.enit.fr/"

// TermNamespace is the base IRI for rule metadata terms.
const TermNamespace = Namespace + "ontology/"

// External ontology namespaces.
const (
	// IOFCoreNamespace is the Industrial Ontology Foundry core namespace.
	IOFCoreNamespace = "https://spec.industrialontologies.org/ontology/core/Core/"

	// OBONamespace is the OBO Foundry namespace hosting BFO terms.
	OBONamespace = "http://purl.obolibrary.org/obo/"

	// ExampleNamespace hosts relations that have no published ontology term yet.
	ExampleNamespace = "http://example.org/"
)

// Standard RDF/RDFS/OWL IRIs used in generated queries and exports.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	RDFType           = RDFNamespace + "type"
	RDFSLabel         = RDFSNamespace + "label"
	RDFSSubClassOf    = RDFSNamespace + "subClassOf"
	RDFSSubPropertyOf = RDFSNamespace + "subPropertyOf"
	OWLClass          = OWLNamespace + "Class"
	OWLObjectProperty = OWLNamespace + "ObjectProperty"
	XSDInteger        = XSDNamespace + "integer"
)

// Relation predicate IRIs.
const (
	// IOFIsOutputOf links a product to the process that outputs it.
	IOFIsOutputOf = IOFCoreNamespace + "isOutputOf"

	// BFOPrecedes is BFO_0000063 (precedes).
	BFOPrecedes = OBONamespace + "BFO_0000063"

	// BFOParticipatesAtSomeTime is BFO_0000056 (participates in at some time).
	BFOParticipatesAtSomeTime = OBONamespace + "BFO_0000056"

	// ExampleIsInputOf links a component to the assembly consuming it.
	ExampleIsInputOf = ExampleNamespace + "isInputOf"

	// ExamplePartOf links an assembly step to its assembly.
	ExamplePartOf = ExampleNamespace + "partOf"

	// ExampleIsOutputOf links a component to the process producing it.
	ExampleIsOutputOf = ExampleNamespace + "isOutputOf"
)

// Class and property IRIs for rule metadata.
const (
	// ClassConcreteRule represents a rule template specialized from a statement.
	ClassConcreteRule = TermNamespace + "ConcreteRule"

	// PropTemplate links a concrete rule to its template number.
	PropTemplate = TermNamespace + "template"

	// PropExpression is the first-order logic expression of a rule.
	PropExpression = TermNamespace + "expression"

	// PropTrigger is the trigger phrase that selected the template.
	PropTrigger = TermNamespace + "trigger"

	// PropQuery is the SPARQL update generated for a rule.
	PropQuery = TermNamespace + "query"

	// PropStatement is the natural-language statement a rule came from.
	PropStatement = TermNamespace + "statement"

	// PropMentions links a rule to an entity class it mentions.
	PropMentions = TermNamespace + "mentions"
)
