/*
	Package payload models point annotation elements (synapses, bookmarks)
	exchanged with annotation instances as JSON, including schema validation
	of bookmark uploads and connectivity counting over synaptic partners.
*/
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/flyconnectome/dvidtools/dvid"
)

const (
	UnknownElem ElementType = iota
	PostSyn                 // Post-synaptic element
	PreSyn                  // Pre-synaptic element
	Gap                     // Gap junction
	Note                    // A note or bookmark with some description
)

// ElementType gives the type of a synaptic element.
type ElementType uint8

func (e ElementType) MarshalJSON() ([]byte, error) {
	switch e {
	case UnknownElem:
		return []byte(`"Unknown"`), nil
	case PostSyn:
		return []byte(`"PostSyn"`), nil
	case PreSyn:
		return []byte(`"PreSyn"`), nil
	case Gap:
		return []byte(`"Gap"`), nil
	case Note:
		return []byte(`"Note"`), nil
	default:
		return nil, fmt.Errorf("unknown element type: %d", e)
	}
}

func (e *ElementType) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"Unknown"`:
		*e = UnknownElem
	case `"PostSyn"`:
		*e = PostSyn
	case `"PreSyn"`:
		*e = PreSyn
	case `"Gap"`:
		*e = Gap
	case `"Note"`:
		*e = Note
	default:
		return fmt.Errorf("unknown element type in JSON: %s", string(b))
	}
	return nil
}

type RelationType uint8

const (
	UnknownRel RelationType = iota
	PostSynTo
	PreSynTo
	ConvergentTo
	GroupedWith
)

func (r RelationType) MarshalJSON() ([]byte, error) {
	switch r {
	case UnknownRel:
		return []byte(`"UnknownRelationship"`), nil
	case PostSynTo:
		return []byte(`"PostSynTo"`), nil
	case PreSynTo:
		return []byte(`"PreSynTo"`), nil
	case ConvergentTo:
		return []byte(`"ConvergentTo"`), nil
	case GroupedWith:
		return []byte(`"GroupedWith"`), nil
	default:
		return nil, fmt.Errorf("unknown relation type: %d", r)
	}
}

func (r *RelationType) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"UnknownRelationship"`:
		*r = UnknownRel
	case `"PostSynTo"`:
		*r = PostSynTo
	case `"PreSynTo"`:
		*r = PreSynTo
	case `"ConvergentTo"`:
		*r = ConvergentTo
	case `"GroupedWith"`:
		*r = GroupedWith
	default:
		return fmt.Errorf("unknown relationship type in JSON: %s", string(b))
	}
	return nil
}

// Tag is a string description of a synaptic element grouping, e.g., "convergent".
type Tag string

// Relationship is a link between two synaptic elements.
type Relationship struct {
	Rel RelationType
	To  dvid.Point3d
}

// PropKind discriminates the scalar held in a PropValue.
type PropKind uint8

const (
	StringProp PropKind = iota
	IntProp
	FloatProp
	BoolProp
)

// PropValue is a scalar element property.  Annotation payloads carry
// free-form property maps whose values may be strings, numbers, or booleans;
// the kind tag preserves which one arrived on the wire.
type PropValue struct {
	Kind  PropKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func StringValue(s string) PropValue { return PropValue{Kind: StringProp, Str: s} }
func IntValue(i int64) PropValue     { return PropValue{Kind: IntProp, Int: i} }
func FloatValue(f float64) PropValue { return PropValue{Kind: FloatProp, Float: f} }
func BoolValue(b bool) PropValue     { return PropValue{Kind: BoolProp, Bool: b} }

func (p PropValue) String() string {
	switch p.Kind {
	case IntProp:
		return strconv.FormatInt(p.Int, 10)
	case FloatProp:
		return strconv.FormatFloat(p.Float, 'g', -1, 64)
	case BoolProp:
		return strconv.FormatBool(p.Bool)
	default:
		return p.Str
	}
}

func (p PropValue) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case StringProp:
		return json.Marshal(p.Str)
	case IntProp:
		return json.Marshal(p.Int)
	case FloatProp:
		return json.Marshal(p.Float)
	case BoolProp:
		return json.Marshal(p.Bool)
	default:
		return nil, fmt.Errorf("unknown property kind: %d", p.Kind)
	}
}

func (p *PropValue) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	switch {
	case s == "true" || s == "false":
		p.Kind = BoolProp
		p.Bool = s == "true"
		return nil
	case len(s) > 0 && s[0] == '"':
		p.Kind = StringProp
		return json.Unmarshal(b, &p.Str)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		p.Kind = IntProp
		p.Int = i
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		p.Kind = FloatProp
		p.Float = f
		return nil
	}
	return fmt.Errorf("property value %s is not a scalar", s)
}

// Element describes a point annotation element's properties.
type Element struct {
	Pos  dvid.Point3d
	Kind ElementType
	Rels Relationships
	Tags Tags                 // Indexed
	Prop map[string]PropValue // Non-Indexed
}

func (e Element) Copy() *Element {
	c := new(Element)
	c.Pos = e.Pos
	c.Kind = e.Kind
	c.Rels = make(Relationships, len(e.Rels))
	copy(c.Rels, e.Rels)
	c.Tags = make(Tags, len(e.Tags))
	copy(c.Tags, e.Tags)
	c.Prop = make(map[string]PropValue, len(e.Prop))
	for k, v := range e.Prop {
		c.Prop[k] = v
	}
	return c
}

type Relationships []Relationship

type Tags []Tag

// ParseElements parses the JSON element list returned by annotation
// endpoints.  A JSON null, the server's encoding of an empty result, parses
// to an empty slice.
func ParseElements(jsonBytes []byte) ([]Element, error) {
	var elems []Element
	if err := json.Unmarshal(jsonBytes, &elems); err != nil {
		return nil, fmt.Errorf("could not parse elements: %v: %w", err, dvid.ErrParse)
	}
	return elems, nil
}

// ConnCount tallies synaptic connections with one partner body.
type ConnCount struct {
	Pre  int // connections where the partner is presynaptic (inputs)
	Post int // connections where the partner is postsynaptic (outputs)
}

// CountConnections tallies synaptic partners of a body from its synapse
// elements.  labelOf resolves a partner position to its body label and is
// injected so callers control how lookups are batched or cached.  Elements
// other than PreSyn and PostSyn are ignored.
func CountConnections(elements []Element, labelOf func(dvid.Point3d) uint64) map[uint64]ConnCount {
	counts := make(map[uint64]ConnCount)
	for _, e := range elements {
		if e.Kind != PreSyn && e.Kind != PostSyn {
			continue
		}
		for _, rel := range e.Rels {
			partner := labelOf(rel.To)
			c := counts[partner]
			if e.Kind == PostSyn {
				c.Pre++
			} else {
				c.Post++
			}
			counts[partner] = c
		}
	}
	return counts
}
