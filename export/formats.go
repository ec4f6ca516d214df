package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	Name        Format
	MIMEType    string
	Extension   string
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	if _, ok := FormatRegistry[Format(s)]; ok {
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// defaultPrefixes returns the namespace prefixes used in Turtle and JSON-LD.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":   mcskg.RDFNamespace,
		"rdfs":  mcskg.RDFSNamespace,
		"owl":   mcskg.OWLNamespace,
		"xsd":   mcskg.XSDNamespace,
		"obo":   mcskg.OBONamespace,
		"mcskg": mcskg.TermNamespace,
		"ent":   mcskg.Namespace,
	}
}

var localName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// compact writes iri as a prefixed name when a prefix covers it, else <iri>.
// The longest matching namespace wins.
func compact(prefixes map[string]string, iri string) string {
	best, bestNS := "", ""
	for prefix, ns := range prefixes {
		if len(ns) <= len(bestNS) || !strings.HasPrefix(iri, ns) {
			continue
		}
		if localName.MatchString(iri[len(ns):]) {
			best, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return "<" + iri + ">"
	}
	return best + ":" + iri[len(bestNS):]
}

func sortedPrefixes(prefixes map[string]string) []string {
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// turtleWriter accumulates Turtle output grouped by subject.
type turtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

func (w *turtleWriter) writePrefixes() {
	for _, prefix := range sortedPrefixes(w.prefixes) {
		fmt.Fprintf(&w.sb, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
	w.sb.WriteString("\n")
}

func (w *turtleWriter) writeSubject(subject string, triples []Triple) {
	w.sb.WriteString(compact(w.prefixes, subject))
	w.sb.WriteString("\n")
	for i, t := range triples {
		terminator := " ;"
		if i == len(triples)-1 {
			terminator = " ."
		}
		predicate := compact(w.prefixes, t.Predicate)
		if t.Predicate == mcskg.RDFType {
			predicate = "a"
		}
		fmt.Fprintf(&w.sb, "    %s %s%s\n", predicate, w.object(t.Object), terminator)
	}
	w.sb.WriteString("\n")
}

func (w *turtleWriter) object(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return compact(w.prefixes, string(v))
	case string:
		return `"` + escapeString(v) + `"`
	case int:
		return fmt.Sprintf(`"%d"^^xsd:integer`, v)
	default:
		return `"` + escapeString(fmt.Sprint(v)) + `"`
	}
}

func (w *turtleWriter) String() string { return w.sb.String() }

// nTriplesWriter writes one fully expanded triple per line.
type nTriplesWriter struct {
	sb strings.Builder
}

func (w *nTriplesWriter) writeTriple(t Triple) {
	fmt.Fprintf(&w.sb, "<%s> <%s> %s .\n", t.Subject, t.Predicate, objectNTriples(t.Object))
}

func (w *nTriplesWriter) String() string { return w.sb.String() }

func objectNTriples(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return "<" + string(v) + ">"
	case string:
		return `"` + escapeString(v) + `"`
	case int:
		return fmt.Sprintf(`"%d"^^<%s>`, v, mcskg.XSDInteger)
	default:
		return `"` + escapeString(fmt.Sprint(v)) + `"`
	}
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON flattens Properties next to @id and @type.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

func jsonldValue(obj any) any {
	switch v := obj.(type) {
	case IRI:
		return map[string]string{"@id": string(v)}
	case int:
		return map[string]any{"@value": v, "@type": "xsd:integer"}
	default:
		return v
	}
}

// escapeString escapes special characters for RDF string literals.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
