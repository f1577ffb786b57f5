// pkg/connectors/decode.go
package connectors

import (
	jmes "github.com/jmespath/go-jmespath"
	"go.uber.org/zap"
)

// Shape tags how a vendor list response was laid out. Unrecognized is a
// distinct outcome from an empty list: an empty array is a valid answer, an
// unknown envelope is not.
type Shape string

const (
	ShapeArray        Shape = "array"        // bare JSON array
	ShapeWrapped      Shape = "wrapped"      // {"items":[...]} and friends
	ShapePaginated    Shape = "paginated"    // nested page envelope
	ShapeUnrecognized Shape = "unrecognized" // none of the declared probes hit
)

// ListResult is the decoded union.
type ListResult struct {
	Shape Shape
	Items []any
}

// Probes are declared in order; first array-valued hit wins. Vendors wrap
// list payloads in a handful of envelopes and the set here is the explicit
// contract — growing it is a code change, not a runtime heuristic.
var listProbes = []struct {
	shape Shape
	expr  string
}{
	{ShapeWrapped, "items"},
	{ShapeWrapped, "data"},
	{ShapeWrapped, "tools"},
	{ShapeWrapped, "results"},
	{ShapePaginated, "data.items"},
	{ShapePaginated, "page.entries"},
}

// DecodeList classifies a loosely-shaped vendor response into the tagged
// union. doc is the already-unmarshalled JSON document.
func DecodeList(log *zap.SugaredLogger, doc any) ListResult {
	if arr, ok := doc.([]any); ok {
		return ListResult{Shape: ShapeArray, Items: arr}
	}
	for _, p := range listProbes {
		res, err := jmes.Search(p.expr, doc)
		if err != nil {
			continue
		}
		if arr, ok := res.([]any); ok {
			return ListResult{Shape: p.shape, Items: arr}
		}
	}
	if log != nil {
		log.Warnw("vendor response shape unrecognized", "probes", len(listProbes))
	}
	return ListResult{Shape: ShapeUnrecognized}
}
