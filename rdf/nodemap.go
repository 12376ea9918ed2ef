package rdf

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Value is an entry in a node's property list: NodeRef, *ValueObject or *ListObject.
type Value interface {
	isValue()
}

// NodeRef references another node by identifier.
type NodeRef struct {
	ID string
}

// ValueObject is a literal value taken from an expanded @value object.
type ValueObject struct {
	// Value is a string, bool, number (float64, int, int64, json.Number) or,
	// for @json values, any decoded JSON value.
	Value     any
	Type      string
	Language  string
	Direction string
	Index     string
}

// ListObject is an ordered RDF List.
type ListObject struct {
	Items []Value
	Index string
}

func (NodeRef) isValue()      {}
func (*ValueObject) isValue() {}
func (*ListObject) isValue()  {}

// Node is a flattened subject with its properties.
type Node struct {
	ID         string
	Types      []string
	Index      string
	Properties map[string][]Value
	// Keywords holds other keyword entries copied from the input.
	Keywords map[string]any
}

func newNode(id string) *Node {
	return &Node{ID: id, Properties: map[string][]Value{}}
}

// IsReference reports whether the node carries nothing but its identifier.
func (n *Node) IsReference() bool {
	return len(n.Types) == 0 && n.Index == "" && len(n.Properties) == 0 && len(n.Keywords) == 0
}

// PropertyNames returns the property IRIs in sorted order.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.Properties))
	for p := range n.Properties {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

func (n *Node) addType(t string) {
	if !slices.Contains(n.Types, t) {
		n.Types = append(n.Types, t)
	}
}

// addValue appends v to the property, skipping duplicates unless v is a list.
func (n *Node) addValue(property string, v Value) {
	existing := n.Properties[property]
	if _, isList := v.(*ListObject); !isList {
		for _, e := range existing {
			if valuesEqual(e, v) {
				return
			}
		}
	}
	n.Properties[property] = append(existing, v)
}

func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NodeRef:
		bv, ok := b.(NodeRef)
		return ok && av.ID == bv.ID
	case *ValueObject:
		bv, ok := b.(*ValueObject)
		return ok && av.Type == bv.Type && av.Language == bv.Language &&
			av.Direction == bv.Direction && av.Index == bv.Index &&
			reflect.DeepEqual(av.Value, bv.Value)
	default:
		return false
	}
}

// NodeMap maps graph name to subject identifier to node.
// The default graph is keyed by DefaultGraph.
type NodeMap map[string]map[string]*Node

// BuildNodeMap flattens an expanded JSON-LD document into a node map.
// Blank node identifiers are relabeled through issuer.
func BuildNodeMap(ctx context.Context, expanded any, issuer *IdentifierIssuer) (NodeMap, error) {
	nm := NodeMap{DefaultGraph: {}}
	if err := nm.Build(ctx, expanded, DefaultGraph, issuer); err != nil {
		return nil, err
	}
	return nm, nil
}

// Build adds an expanded node, value or array of them to graph.
func (nm NodeMap) Build(ctx context.Context, element any, graph string, issuer *IdentifierIssuer) error {
	b := &nodeMapBuilder{ctx: ctx, nodes: nm, issuer: issuer}
	if nm[graph] == nil {
		nm[graph] = map[string]*Node{}
	}
	return b.build(element, graph, activeSubject{}, "", nil)
}

// GraphNames returns graph names in sorted order, DefaultGraph first.
func (nm NodeMap) GraphNames() []string {
	names := make([]string, 0, len(nm))
	for name := range nm {
		if name != DefaultGraph {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := nm[DefaultGraph]; ok {
		names = append([]string{DefaultGraph}, names...)
	}
	return names
}

// Subjects returns the subject identifiers of graph in sorted order.
func (nm NodeMap) Subjects(graph string) []string {
	ids := make([]string, 0, len(nm[graph]))
	for id := range nm[graph] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TopLevel returns the nodes of graph in subject order, without reference-only nodes.
func (nm NodeMap) TopLevel(graph string) []*Node {
	var out []*Node
	for _, id := range nm.Subjects(graph) {
		if n := nm[graph][id]; !n.IsReference() {
			out = append(out, n)
		}
	}
	return out
}

// Merged folds every graph into a single subject map.
func (nm NodeMap) Merged() map[string]*Node {
	merged := map[string]*Node{}
	for _, graph := range nm.GraphNames() {
		for _, id := range nm.Subjects(graph) {
			src := nm[graph][id]
			dst, ok := merged[id]
			if !ok {
				dst = newNode(id)
				merged[id] = dst
			}
			for _, t := range src.Types {
				dst.addType(t)
			}
			if src.Index != "" {
				dst.Index = src.Index
			}
			for k, v := range src.Keywords {
				if dst.Keywords == nil {
					dst.Keywords = map[string]any{}
				}
				dst.Keywords[k] = v
			}
			for _, p := range src.PropertyNames() {
				if _, ok := dst.Properties[p]; !ok {
					dst.Properties[p] = []Value{}
				}
				for _, v := range src.Properties[p] {
					dst.addValue(p, v)
				}
			}
		}
	}
	return merged
}

// activeSubject is the node receiving values. When reverse is set the
// roles flip: the node being visited receives a reference to id.
type activeSubject struct {
	id      string
	reverse bool
}

type nodeMapBuilder struct {
	ctx    context.Context
	nodes  NodeMap
	issuer *IdentifierIssuer
}

func (b *nodeMapBuilder) relabel(id string) string {
	if strings.HasPrefix(id, blankNodePrefix) {
		return b.issuer.IssueID(id)
	}
	return id
}

func (b *nodeMapBuilder) build(element any, graph string, subject activeSubject, property string, list *[]Value) error {
	if err := checkContext(b.ctx); err != nil {
		return err
	}
	switch el := element.(type) {
	case []any:
		for _, item := range el {
			if err := b.build(item, graph, subject, property, list); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		switch {
		case hasKey(el, "@value"):
			return b.buildValue(el, graph, subject, property, list)
		case hasKey(el, "@list"):
			return b.buildList(el, graph, subject, property, list)
		default:
			return b.buildNode(el, graph, subject, property, list)
		}
	case nil:
		return nil
	default:
		// Bare scalars only appear inside lists of unexpanded input.
		if list != nil {
			*list = append(*list, &ValueObject{Value: el})
		}
		return nil
	}
}

func (b *nodeMapBuilder) buildValue(el map[string]any, graph string, subject activeSubject, property string, list *[]Value) error {
	if el["@value"] == nil {
		return nil
	}
	vo := &ValueObject{Value: el["@value"]}
	vo.Type, _ = el["@type"].(string)
	vo.Type = b.relabel(vo.Type)
	vo.Language, _ = el["@language"].(string)
	vo.Direction, _ = el["@direction"].(string)
	vo.Index, _ = el["@index"].(string)

	if list != nil {
		*list = append(*list, vo)
		return nil
	}
	if subject.id == "" || property == "" {
		return nil
	}
	b.nodes[graph][subject.id].addValue(property, vo)
	return nil
}

func (b *nodeMapBuilder) buildList(el map[string]any, graph string, subject activeSubject, property string, list *[]Value) error {
	items := []Value{}
	if err := b.build(el["@list"], graph, subject, property, &items); err != nil {
		return err
	}
	lo := &ListObject{Items: items}
	lo.Index, _ = el["@index"].(string)

	if list != nil {
		*list = append(*list, lo)
		return nil
	}
	if subject.id == "" || property == "" {
		return nil
	}
	b.nodes[graph][subject.id].addValue(property, lo)
	return nil
}

func (b *nodeMapBuilder) buildNode(el map[string]any, graph string, subject activeSubject, property string, list *[]Value) error {
	var id string
	switch raw := el["@id"].(type) {
	case nil:
		id = b.issuer.NewID()
	case string:
		id = b.relabel(raw)
	default:
		return &NodeError{Graph: graph, Subject: fmt.Sprint(raw), Err: fmt.Errorf("%w: @id must be a string", ErrInvalidNode)}
	}

	// Blank node types are named before anything else in the node.
	types, err := stringList(el["@type"])
	if err != nil {
		return &NodeError{Graph: graph, Subject: id, Err: err}
	}
	for i, t := range types {
		types[i] = b.relabel(t)
	}

	nodes := b.nodes[graph]
	node, ok := nodes[id]
	if !ok {
		node = newNode(id)
		nodes[id] = node
	}

	switch {
	case subject.reverse:
		node.addValue(property, NodeRef{ID: subject.id})
	case property != "":
		ref := NodeRef{ID: id}
		if list != nil {
			*list = append(*list, ref)
		} else if subject.id != "" {
			nodes[subject.id].addValue(property, ref)
		}
	}

	keys := make([]string, 0, len(el))
	for k := range el {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := el[key]
		switch key {
		case "@id":
		case "@type":
			for _, t := range types {
				node.addType(t)
			}
		case "@index":
			idx, _ := value.(string)
			if node.Index != "" && node.Index != idx {
				return &NodeError{Graph: graph, Subject: id, Err: ErrConflictingIndex}
			}
			node.Index = idx
		case "@reverse":
			reverseMap, ok := value.(map[string]any)
			if !ok {
				return &NodeError{Graph: graph, Subject: id, Err: fmt.Errorf("%w: @reverse must be an object", ErrInvalidNode)}
			}
			for _, rp := range sortedKeys(reverseMap) {
				if err := b.build(reverseMap[rp], graph, activeSubject{id: id, reverse: true}, b.relabel(rp), nil); err != nil {
					return err
				}
			}
		case "@graph":
			if b.nodes[id] == nil {
				b.nodes[id] = map[string]*Node{}
			}
			if err := b.build(value, id, activeSubject{}, "", nil); err != nil {
				return err
			}
		case "@included":
			if err := b.build(value, graph, activeSubject{}, "", nil); err != nil {
				return err
			}
		default:
			if strings.HasPrefix(key, "@") {
				if node.Keywords == nil {
					node.Keywords = map[string]any{}
				}
				node.Keywords[key] = value
				continue
			}
			prop := b.relabel(key)
			if _, ok := node.Properties[prop]; !ok {
				node.Properties[prop] = []Value{}
			}
			if err := b.build(value, graph, activeSubject{id: id}, prop, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: @type values must be strings", ErrInvalidNode)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: @type must be a string or array", ErrInvalidNode)
	}
}
