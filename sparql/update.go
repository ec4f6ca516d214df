// Package sparql translates concrete rules into SPARQL 1.1 INSERT/WHERE
// updates that add freshly identified nodes and relation edges to a
// manufacturing knowledge graph.
package sparql

import (
	"regexp"
	"sort"
	"strings"
)

// Term is a variable or an IRI in a triple pattern.
type Term struct {
	value    string
	variable bool
}

// Var returns the variable term ?name.
func Var(name string) Term { return Term{value: name, variable: true} }

// IRI returns the IRI term <iri>.
func IRI(iri string) Term { return Term{value: iri} }

// IsVar reports whether the term is a variable.
func (t Term) IsVar() bool { return t.variable }

// Value returns the variable name or the IRI without delimiters.
func (t Term) Value() string { return t.value }

func (t Term) String() string {
	if t.variable {
		return "?" + t.value
	}
	return "<" + t.value + ">"
}

// Pattern is one triple pattern.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Bind assigns the result of Expr to ?Var inside the WHERE clause.
type Bind struct {
	Var  string
	Expr string
}

// Prefix is a PREFIX declaration.
type Prefix struct {
	Name string
	IRI  string
}

// Update is a single INSERT { ... } WHERE { ... } operation.
type Update struct {
	Prefixes []Prefix
	Insert   []Pattern
	Where    []Pattern
	Binds    []Bind
}

// localName matches the IRI suffixes that may be written as prefixed names.
var localName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// String renders the update. IRIs under a declared prefix are compacted.
func (u Update) String() string {
	w := &writer{prefixes: u.Prefixes}
	w.writePrefixes()

	w.sb.WriteString("INSERT {\n")
	for _, p := range u.Insert {
		w.writePattern(p)
	}
	w.sb.WriteString("}\n")

	w.sb.WriteString("WHERE {\n")
	for _, p := range u.Where {
		w.writePattern(p)
	}
	for _, b := range u.Binds {
		w.sb.WriteString("  BIND(")
		w.sb.WriteString(b.Expr)
		w.sb.WriteString(" AS ?")
		w.sb.WriteString(b.Var)
		w.sb.WriteString(")\n")
	}
	w.sb.WriteString("}\n")
	return w.sb.String()
}

type writer struct {
	prefixes []Prefix
	sb       strings.Builder
}

func (w *writer) writePrefixes() {
	if len(w.prefixes) == 0 {
		return
	}
	sorted := make([]Prefix, len(w.prefixes))
	copy(sorted, w.prefixes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, p := range sorted {
		w.sb.WriteString("PREFIX " + p.Name + ": <" + p.IRI + ">\n")
	}
	w.sb.WriteString("\n")
}

func (w *writer) writePattern(p Pattern) {
	w.sb.WriteString("  ")
	w.sb.WriteString(w.term(p.Subject))
	w.sb.WriteString(" ")
	w.sb.WriteString(w.term(p.Predicate))
	w.sb.WriteString(" ")
	w.sb.WriteString(w.term(p.Object))
	w.sb.WriteString(" .\n")
}

func (w *writer) term(t Term) string {
	if t.variable {
		return t.String()
	}
	for _, p := range w.prefixes {
		if local, ok := strings.CutPrefix(t.value, p.IRI); ok && localName.MatchString(local) {
			return p.Name + ":" + local
		}
	}
	return t.String()
}
