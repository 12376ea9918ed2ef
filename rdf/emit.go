package rdf

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RDFDirectionI18nDatatype encodes base direction in an i18n datatype IRI.
const RDFDirectionI18nDatatype = "i18n-datatype"

// EmitOptions configures quad emission from a node map.
type EmitOptions struct {
	// ProduceGeneralizedRDF keeps quads whose predicate is a blank node.
	ProduceGeneralizedRDF bool
	// RDFDirection selects how literal base direction is written. Empty keeps
	// it on the literal (RDF 1.2 "x"@en--rtl); RDFDirectionI18nDatatype moves
	// it into the datatype.
	RDFDirection string
}

// EmitQuads turns every graph of a node map into quads. List nodes are
// minted with issuer.NewID, so pass the issuer used to build the node map.
func EmitQuads(nm NodeMap, issuer *IdentifierIssuer, opts EmitOptions) []Quad {
	var quads []Quad
	for _, name := range nm.GraphNames() {
		var graph Term
		if name != DefaultGraph {
			if !isNodeID(name) {
				continue
			}
			graph = NewTerm(name)
		}
		quads = append(quads, EmitGraph(nm[name], graph, issuer, opts)...)
	}
	return quads
}

// EmitGraph emits the quads for a single graph's subjects, in sorted
// (subject, property) order. Quads with relative IRIs are skipped.
func EmitGraph(nodes map[string]*Node, graph Term, issuer *IdentifierIssuer, opts EmitOptions) []Quad {
	e := &emitter{issuer: issuer, graph: graph, opts: opts}
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !isNodeID(id) {
			continue
		}
		node := nodes[id]
		subject := NewTerm(id)
		for _, t := range node.Types {
			if obj := e.nodeTerm(t); obj != nil {
				e.add(subject, IRI{Value: RDFType}, obj)
			}
		}
		for _, property := range node.PropertyNames() {
			if !isNodeID(property) {
				continue
			}
			predicate := NewTerm(property)
			if isBlank(predicate) && !opts.ProduceGeneralizedRDF {
				continue
			}
			for _, item := range node.Properties[property] {
				if obj := e.objectTerm(item); obj != nil {
					e.add(subject, predicate, obj)
				}
			}
		}
	}
	return e.quads
}

type emitter struct {
	issuer *IdentifierIssuer
	graph  Term
	opts   EmitOptions
	quads  []Quad
}

func (e *emitter) add(s, p, o Term) {
	e.quads = append(e.quads, Quad{S: s, P: p, O: o, G: e.graph})
}

func (e *emitter) nodeTerm(id string) Term {
	if !isNodeID(id) {
		return nil
	}
	return NewTerm(id)
}

// objectTerm converts a property value to an object term, emitting list
// chains as a side effect. It returns nil for values that must be skipped.
func (e *emitter) objectTerm(v Value) Term {
	switch val := v.(type) {
	case NodeRef:
		return e.nodeTerm(val.ID)
	case *ValueObject:
		lit, ok := e.literal(val)
		if !ok {
			return nil
		}
		return lit
	case *ListObject:
		return e.listChain(val.Items)
	default:
		return nil
	}
}

// listChain emits the rdf:first/rdf:rest chain for items and returns its head.
func (e *emitter) listChain(items []Value) Term {
	if len(items) == 0 {
		return IRI{Value: RDFNil}
	}
	head := NewTerm(e.issuer.NewID())
	subject := head
	for i, item := range items {
		obj := e.objectTerm(item)
		// Nested chains in item are numbered before the next node.
		var rest Term = IRI{Value: RDFNil}
		if i+1 < len(items) {
			rest = NewTerm(e.issuer.NewID())
		}
		if obj != nil {
			e.add(subject, IRI{Value: RDFFirst}, obj)
		}
		e.add(subject, IRI{Value: RDFRest}, rest)
		subject = rest
	}
	return head
}

func (e *emitter) literal(v *ValueObject) (Literal, bool) {
	datatype := v.Type
	if datatype != "" && datatype != "@json" && !isAbsoluteIRI(datatype) {
		return Literal{}, false
	}
	lit := Literal{}

	if datatype == "@json" {
		lexical, err := canonicalJSON(v.Value)
		if err != nil {
			return Literal{}, false
		}
		lit.Lexical = lexical
		lit.Datatype = IRI{Value: RDFJSON}
		return lit, true
	}

	switch value := v.Value.(type) {
	case bool:
		lit.Lexical = strconv.FormatBool(value)
		datatype = defaultString(datatype, XSDBoolean)
	case string:
		lit.Lexical = value
		if v.Language == "" && v.Direction == "" {
			datatype = defaultString(datatype, XSDString)
			break
		}
		return e.languageLiteral(value, v, datatype), true
	default:
		f, isInt, ok := numericValue(value)
		if !ok {
			return Literal{}, false
		}
		if !isInt || datatype == XSDDouble {
			lit.Lexical = canonicalDouble(f)
			datatype = defaultString(datatype, XSDDouble)
		} else {
			lit.Lexical = integerLexical(value, f)
			datatype = defaultString(datatype, XSDInteger)
		}
	}
	if datatype != XSDString {
		lit.Datatype = IRI{Value: datatype}
	}
	return lit, true
}

func (e *emitter) languageLiteral(lexical string, v *ValueObject, datatype string) Literal {
	lit := Literal{Lexical: lexical}
	if v.Direction != "" && e.opts.RDFDirection == RDFDirectionI18nDatatype {
		lit.Datatype = IRI{Value: i18nNS + strings.ToLower(v.Language) + "_" + v.Direction}
		return lit
	}
	if v.Language == "" {
		// Direction without a language has no RDF 1.2 literal form.
		if datatype != "" && datatype != XSDString && datatype != RDFLangString {
			lit.Datatype = IRI{Value: datatype}
		}
		return lit
	}
	lit.Lang = v.Language
	lit.Direction = v.Direction
	return lit
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// numericValue reports the float value and whether it is integral and within
// the range where xsd:integer is used.
func numericValue(v any) (float64, bool, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false, false
		}
		if _, err := n.Int64(); err == nil {
			return parsed, true, true
		}
		f = parsed
	default:
		return 0, false, false
	}
	isInt := !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && math.Abs(f) < 1e21
	return f, isInt, true
}

func integerLexical(v any, f float64) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

// canonicalDouble renders an xsd:double in canonical form: the %1.15E
// rendering with redundant mantissa zeros and exponent padding removed,
// so 1.1 becomes "1.1E0" and 1e-7 becomes "1.0E-7".
func canonicalDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	s := strconv.FormatFloat(f, 'E', 15, 64)
	mantissa, exponent, _ := strings.Cut(s, "E")
	mantissa = strings.TrimRight(mantissa, "0")
	if strings.HasSuffix(mantissa, ".") {
		mantissa += "0"
	}
	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return s
	}
	return mantissa + "E" + strconv.Itoa(exp)
}

// isNodeID reports whether id can appear as a subject, predicate or graph:
// a blank node identifier or an absolute IRI.
func isNodeID(id string) bool {
	return strings.HasPrefix(id, blankNodePrefix) || isAbsoluteIRI(id)
}
