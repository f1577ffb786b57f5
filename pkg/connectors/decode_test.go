package connectors

import (
	"encoding/json"
	"testing"
)

func mustJSON(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return doc
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shape Shape
		items int
	}{
		{"bare array", `[{"name":"a"},{"name":"b"}]`, ShapeArray, 2},
		{"empty array", `[]`, ShapeArray, 0},
		{"items envelope", `{"items":[{"name":"a"}]}`, ShapeWrapped, 1},
		{"data envelope", `{"data":[1,2,3]}`, ShapeWrapped, 3},
		{"tools envelope", `{"tools":[{"name":"a"}]}`, ShapeWrapped, 1},
		{"results envelope", `{"results":[]}`, ShapeWrapped, 0},
		{"nested page", `{"data":{"items":[{"name":"a"},{"name":"b"}]}}`, ShapePaginated, 2},
		{"page entries", `{"page":{"entries":[{"name":"a"}]}}`, ShapePaginated, 1},
		{"unknown envelope", `{"records":[{"name":"a"}]}`, ShapeUnrecognized, 0},
		{"scalar", `42`, ShapeUnrecognized, 0},
		{"object without lists", `{"status":"ok"}`, ShapeUnrecognized, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeList(nil, mustJSON(t, tt.raw))
			if got.Shape != tt.shape {
				t.Fatalf("shape = %s, want %s", got.Shape, tt.shape)
			}
			if len(got.Items) != tt.items {
				t.Fatalf("items = %d, want %d", len(got.Items), tt.items)
			}
		})
	}
}

// An empty wrapped list and an unrecognized envelope are different answers;
// downstream treats only the latter as an error.
func TestDecodeListEmptyVersusUnrecognized(t *testing.T) {
	empty := DecodeList(nil, mustJSON(t, `{"items":[]}`))
	if empty.Shape == ShapeUnrecognized {
		t.Fatal("empty items list must not be unrecognized")
	}
	unknown := DecodeList(nil, mustJSON(t, `{"unexpected":true}`))
	if unknown.Shape != ShapeUnrecognized {
		t.Fatalf("shape = %s", unknown.Shape)
	}
}
