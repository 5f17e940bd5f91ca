/*
	This file supports the coarser ROI wire format: JSON arrays of
	[z, y, x0, x1] span quadruples at block resolution.
*/

package sparsevol

import (
	"encoding/json"
	"fmt"

	"github.com/flyconnectome/dvidtools/dvid"
)

// Span is a [z, y, x0, x1] quadruple describing a run of blocks along X.
// Both x0 and x1 are inclusive, so a single block is [z, y, x, x].
type Span [4]int32

// RLE converts the span to a run.  Inclusive endpoints keep the run length
// at least 1.
func (s Span) RLE() RLE {
	return RLE{
		start:  dvid.Point3d{s[2], s[1], s[0]},
		length: s[3] - s[2] + 1,
	}
}

// SpansToRLEs converts span quadruples to runs, rejecting spans whose end
// precedes their start.
func SpansToRLEs(spans []Span) (RLEs, error) {
	rles := make(RLEs, len(spans))
	for i, span := range spans {
		if span[3] < span[2] {
			return nil, fmt.Errorf("span %d has x1 %d < x0 %d: %w", i, span[3], span[2], dvid.ErrFormat)
		}
		rles[i] = span.RLE()
	}
	return rles, nil
}

// RLEsToSpans converts runs back to span quadruples.
func RLEsToSpans(rles RLEs) []Span {
	spans := make([]Span, len(rles))
	for i, rle := range rles {
		spans[i] = Span{rle.start[2], rle.start[1], rle.start[0], rle.start[0] + rle.length - 1}
	}
	return spans
}

// ParseSpans unmarshals the JSON span list returned for ROI geometry into a
// SparseVol at block resolution.
func ParseSpans(jsonBytes []byte) (*SparseVol, error) {
	var spans []Span
	if err := json.Unmarshal(jsonBytes, &spans); err != nil {
		return nil, fmt.Errorf("cannot parse ROI spans: %v: %w", err, dvid.ErrFormat)
	}
	rles, err := SpansToRLEs(spans)
	if err != nil {
		return nil, err
	}
	vol := new(SparseVol)
	vol.AddRLEs(rles)
	return vol, nil
}
