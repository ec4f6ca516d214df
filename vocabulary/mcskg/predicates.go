package mcskg

import "github.com/c360studio/semstreams/vocabulary"

// Rule predicates describe a concrete rule entity in the graph.
const (
	// RuleTemplate is the template number (1-8) the rule was specialized from.
	RuleTemplate = "mcskg.rule.template"

	// RuleExpression is the concrete first-order logic expression.
	RuleExpression = "mcskg.rule.expression"

	// RuleTrigger is the trigger phrase that classified the statement.
	RuleTrigger = "mcskg.rule.trigger"

	// RuleQuery is the generated SPARQL update.
	RuleQuery = "mcskg.rule.query"

	// RuleStatement is the source MCSK statement, when known.
	RuleStatement = "mcskg.rule.statement"
)

// Slot predicates link a rule entity to the entity names it mentions.
const (
	SlotProductName         = "mcskg.slot.product"
	SlotProcessName         = "mcskg.slot.process"
	SlotMachineName         = "mcskg.slot.machine"
	SlotMaterialName        = "mcskg.slot.material"
	SlotAssemblyName        = "mcskg.slot.assembly"
	SlotAssemblyProcessName = "mcskg.slot.assembly_process"
	SlotComponentName       = "mcskg.slot.component"
)

var slotPredicates = map[SlotKind]string{
	SlotProduct:         SlotProductName,
	SlotProcess:         SlotProcessName,
	SlotMachine:         SlotMachineName,
	SlotMaterial:        SlotMaterialName,
	SlotAssembly:        SlotAssemblyName,
	SlotAssemblyProcess: SlotAssemblyProcessName,
	SlotComponent:       SlotComponentName,
}

// SlotPredicate returns the dotted predicate for a slot kind.
func SlotPredicate(kind SlotKind) string {
	if p, ok := slotPredicates[kind]; ok {
		return p
	}
	return "mcskg.slot." + string(kind)
}

func init() {
	vocabulary.Register(RuleTemplate,
		vocabulary.WithDescription("Rule template number the concrete rule was specialized from"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropTemplate))

	vocabulary.Register(RuleExpression,
		vocabulary.WithDescription("Concrete first-order logic expression"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropExpression))

	vocabulary.Register(RuleTrigger,
		vocabulary.WithDescription("Trigger phrase that selected the rule template"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropTrigger))

	vocabulary.Register(RuleQuery,
		vocabulary.WithDescription("SPARQL update generated for the rule"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropQuery))

	vocabulary.Register(RuleStatement,
		vocabulary.WithDescription("Natural-language MCSK statement the rule came from"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropStatement))

	// Slot predicates share the mentions IRI; the dotted name keeps the role.
	for kind, predicate := range slotPredicates {
		vocabulary.Register(predicate,
			vocabulary.WithDescription("Entity name extracted for the "+string(kind)+" slot"),
			vocabulary.WithDataType("string"),
			vocabulary.WithIRI(PropMentions))
	}
}

// GetPredicateIRI returns the IRI registered for a dotted predicate, or the
// predicate appended to TermNamespace when none is registered.
func GetPredicateIRI(predicate string) string {
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	return TermNamespace + predicate
}
