package payload

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/flyconnectome/dvidtools/dvid"
)

// synapseJSON holds one presynaptic element with two partners and one
// postsynaptic element, in the wire shape of annotation elements.
const synapseJSON = `[
	{
		"Pos": [100, 200, 300],
		"Kind": "PreSyn",
		"Rels": [
			{"Rel": "PreSynTo", "To": [110, 200, 300]},
			{"Rel": "PreSynTo", "To": [120, 200, 300]}
		],
		"Tags": ["convergent"],
		"Prop": {"conf": 0.95, "user": "flyem", "checked": true, "votes": 3}
	},
	{
		"Pos": [105, 205, 305],
		"Kind": "PostSyn",
		"Rels": [{"Rel": "PostSynTo", "To": [130, 200, 300]}]
	}
]`

func TestParseElements(t *testing.T) {
	elems, err := ParseElements([]byte(synapseJSON))
	if err != nil {
		t.Fatalf("ParseElements: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("got %d elements, want 2", len(elems))
	}

	pre := elems[0]
	if pre.Kind != PreSyn || pre.Pos != (dvid.Point3d{100, 200, 300}) {
		t.Errorf("presynaptic element parsed as %+v", pre)
	}
	if len(pre.Rels) != 2 || pre.Rels[0].Rel != PreSynTo || pre.Rels[0].To != (dvid.Point3d{110, 200, 300}) {
		t.Errorf("relationships parsed as %+v", pre.Rels)
	}
	if len(pre.Tags) != 1 || pre.Tags[0] != "convergent" {
		t.Errorf("tags parsed as %+v", pre.Tags)
	}

	for name, want := range map[string]PropValue{
		"conf":    FloatValue(0.95),
		"user":    StringValue("flyem"),
		"checked": BoolValue(true),
		"votes":   IntValue(3),
	} {
		if got := pre.Prop[name]; got != want {
			t.Errorf("prop %q = %+v, want %+v", name, got, want)
		}
	}

	if elems[1].Kind != PostSyn {
		t.Errorf("second element kind = %v, want PostSyn", elems[1].Kind)
	}
}

func TestParseElementsNull(t *testing.T) {
	elems, err := ParseElements([]byte("null"))
	if err != nil {
		t.Fatalf("ParseElements: %v", err)
	}
	if len(elems) != 0 {
		t.Errorf("got %d elements, want 0", len(elems))
	}
}

func TestParseElementsErrors(t *testing.T) {
	for _, bad := range []string{
		`[{"Pos": [1, 2, 3], "Kind": "Bogus"}]`,
		`[{"Pos": [1, 2, 3], "Kind": "PreSyn", "Rels": [{"Rel": "SiblingOf", "To": [0, 0, 0]}]}]`,
		`[{"Pos": [1, 2, 3], "Kind": "Note", "Prop": {"nested": {"a": 1}}}]`,
		`{`,
	} {
		if _, err := ParseElements([]byte(bad)); !errors.Is(err, dvid.ErrParse) {
			t.Errorf("%s: got %v, want ErrParse", bad, err)
		}
	}
}

func TestPropValueRoundTrip(t *testing.T) {
	props := map[string]PropValue{
		"comment": StringValue("to trace"),
		"body":    IntValue(5813024015),
		"conf":    FloatValue(0.5),
		"done":    BoolValue(false),
	}
	b, err := json.Marshal(props)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]PropValue
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for name, want := range props {
		if got[name] != want {
			t.Errorf("prop %q = %+v, want %+v", name, got[name], want)
		}
	}
}

func TestCountConnections(t *testing.T) {
	elems, err := ParseElements([]byte(synapseJSON))
	if err != nil {
		t.Fatalf("ParseElements: %v", err)
	}

	// Partners at x >= 120 belong to body 42, everything else to body 7.
	labelOf := func(pos dvid.Point3d) uint64 {
		if pos[0] >= 120 {
			return 42
		}
		return 7
	}
	counts := CountConnections(elems, labelOf)

	if got := counts[7]; got != (ConnCount{Post: 1}) {
		t.Errorf("body 7 counts = %+v, want 1 output", got)
	}
	// Body 42 receives one output and supplies one input.
	if got := counts[42]; got != (ConnCount{Pre: 1, Post: 1}) {
		t.Errorf("body 42 counts = %+v, want 1 input / 1 output", got)
	}
}

func TestCountConnectionsIgnoresNotes(t *testing.T) {
	elems := []Element{{
		Pos:  dvid.Point3d{1, 2, 3},
		Kind: Note,
		Rels: Relationships{{Rel: GroupedWith, To: dvid.Point3d{4, 5, 6}}},
	}}
	counts := CountConnections(elems, func(dvid.Point3d) uint64 { return 1 })
	if len(counts) != 0 {
		t.Errorf("counts = %+v, want none", counts)
	}
}
