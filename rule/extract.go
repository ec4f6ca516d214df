package rule

import (
	"fmt"
	"strings"
)

type locatorKind int

const (
	// tokenAt takes the whitespace token at index n.
	tokenAt locatorKind = iota
	// lastTokens joins the final n tokens.
	lastTokens
	// beforeToken joins the tokens preceding the first anchor token.
	beforeToken
	// afterToken joins the tokens starting n positions after the first anchor token.
	afterToken
	// splitPath splits the raw statement on each separator in turn, keeping
	// the part selected by path at every level.
	splitPath
)

type locator struct {
	kind   locatorKind
	n      int
	anchor string
	seps   []string
	path   []int
}

func at(i int) locator { return locator{kind: tokenAt, n: i} }

func last(n int) locator { return locator{kind: lastTokens, n: n} }

func before(anchor string) locator { return locator{kind: beforeToken, anchor: anchor} }

func after(anchor string, off int) locator { return locator{kind: afterToken, anchor: anchor, n: off} }

func split(seps []string, path ...int) locator {
	return locator{kind: splitPath, seps: seps, path: path}
}

func (l locator) locate(tokens []string, statement string) (string, error) {
	switch l.kind {
	case tokenAt:
		if l.n >= len(tokens) {
			return "", fmt.Errorf("token %d out of range (%d tokens)", l.n, len(tokens))
		}
		return tokens[l.n], nil

	case lastTokens:
		if len(tokens) < l.n {
			return "", fmt.Errorf("need %d trailing tokens, have %d", l.n, len(tokens))
		}
		return strings.Join(tokens[len(tokens)-l.n:], " "), nil

	case beforeToken:
		idx := indexOf(tokens, l.anchor)
		if idx < 0 {
			return "", fmt.Errorf("missing %q", l.anchor)
		}
		return strings.Join(tokens[:idx], " "), nil

	case afterToken:
		idx := indexOf(tokens, l.anchor)
		if idx < 0 {
			return "", fmt.Errorf("missing %q", l.anchor)
		}
		start := idx + l.n
		if start >= len(tokens) {
			return "", fmt.Errorf("nothing after %q", l.anchor)
		}
		return strings.Join(tokens[start:], " "), nil

	case splitPath:
		part := statement
		for i, sep := range l.seps {
			pieces := strings.Split(part, sep)
			if l.path[i] >= len(pieces) {
				return "", fmt.Errorf("missing separator %q", sep)
			}
			part = pieces[l.path[i]]
		}
		return part, nil
	}
	return "", fmt.Errorf("unknown locator %d", l.kind)
}

func indexOf(tokens []string, want string) int {
	for i, tok := range tokens {
		if tok == want {
			return i
		}
	}
	return -1
}

type slotRecipe struct {
	slot     string
	at       locator
	prefixes []string
	suffixes []string
}

var producedBySeps = []string{" and ", " is produced by "}

// recipes describes, per template id, where each slot value sits in the
// statement. The canonical sentence shape is noted above each entry.
var recipes = map[int][]slotRecipe{
	// The result of PROCESS is a/an PRODUCT.
	TemplateProductProcess: {
		{slot: "product", at: last(3), prefixes: []string{"a ", "an ", "is "}},
		{slot: "process", at: at(3)},
	},
	// After PRECEDING you should SUCCEEDING.
	TemplateProcessPrecedence: {
		{slot: "preceding", at: at(1)},
		{slot: "succeeding", at: at(4)},
	},
	// The PROCESS process involves a/an MACHINE machine.
	TemplateMachineParticipation: {
		{slot: "process", at: at(1)},
		{slot: "machine", at: last(2), prefixes: []string{"a ", "an "}, suffixes: []string{" machine"}},
	},
	// The PRODUCT is made of MATERIAL.
	TemplateProductMaterial: {
		{slot: "product", at: at(1)},
		{slot: "material", at: last(3), prefixes: []string{"is ", "made of "}},
	},
	// ASSEMBLY is output of ASSEMBLY PROCESS.
	TemplateAssemblyOutput: {
		{slot: "assembly", at: at(0)},
		{slot: "assembly_process", at: last(2), prefixes: []string{"is ", "output of "}},
	},
	// COMPONENT is the input of ASSEMBLY.
	TemplateAssemblyInput: {
		{slot: "assembly", at: after("is", 4), prefixes: []string{"is ", "the input of "}},
		{slot: "component", at: before("is")},
	},
	// ASSEMBLY includes PICKING and FIXING.
	TemplateAssemblySteps: {
		{slot: "assembly", at: at(0)},
		{slot: "picking", at: at(2)},
		{slot: "fixing", at: at(4)},
	},
	// COMPONENT1 is produced by PROCESS1 and COMPONENT2 is produced by PROCESS2.
	TemplateJointProduction: {
		{slot: "component1", at: split(producedBySeps, 0, 0)},
		{slot: "process1", at: split(producedBySeps, 0, 1)},
		{slot: "component2", at: split(producedBySeps, 1, 0)},
		{slot: "process2", at: split(producedBySeps, 1, 1)},
	},
}

// Extract pulls the slot values for a template out of a statement. It fails
// with an *ExtractionError when a position is missing or a value is empty.
func Extract(templateID int, statement string) (map[string]string, error) {
	recipe, ok := recipes[templateID]
	if !ok {
		return nil, &ExtractionError{TemplateID: templateID, Reason: "no extraction recipe"}
	}

	tokens := strings.Fields(statement)
	values := make(map[string]string, len(recipe))
	for _, r := range recipe {
		raw, err := r.at.locate(tokens, statement)
		if err != nil {
			return nil, &ExtractionError{TemplateID: templateID, Slot: r.slot, Reason: err.Error()}
		}
		name := normalizeName(raw, r.prefixes, r.suffixes)
		if name == "" {
			return nil, &ExtractionError{TemplateID: templateID, Slot: r.slot, Reason: "empty name"}
		}
		values[r.slot] = name
	}
	return values, nil
}

// normalizeName trims whitespace and the terminal period, then strips the
// leading filler phrases in any order and each trailing suffix once.
func normalizeName(raw string, prefixes, suffixes []string) string {
	s := strings.TrimSuffix(strings.TrimSpace(raw), ".")
	for stripped := true; stripped; {
		stripped = false
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimPrefix(s, p)
				stripped = true
			}
		}
	}
	for _, suffix := range suffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}
