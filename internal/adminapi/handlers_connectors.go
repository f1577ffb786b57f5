package adminapi

import (
	"encoding/json"
	"net/http"

	"voxpanel/pkg/connectors"
)

func (a *App) listConnectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.catalog.Specs(), http.StatusOK)
}

// normalizeConnectors maps raw vendor tool names onto the canonical catalog
// and, optionally, classifies a raw vendor list payload first.
func (a *App) normalizeConnectors(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Names []string        `json:"names"`
		Doc   json.RawMessage `json:"doc"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	names := b.Names
	shape := ""
	if len(b.Doc) > 0 {
		var doc any
		if err := json.Unmarshal(b.Doc, &doc); err != nil {
			http.Error(w, "bad doc", http.StatusBadRequest)
			return
		}
		res := connectors.DecodeList(a.log, doc)
		shape = string(res.Shape)
		if res.Shape == connectors.ShapeUnrecognized {
			writeJSON(w, map[string]any{"shape": shape, "error": "unrecognized response shape"}, http.StatusUnprocessableEntity)
			return
		}
		for _, item := range res.Items {
			if m, ok := item.(map[string]any); ok {
				if n, ok := m["name"].(string); ok {
					names = append(names, n)
				}
			}
		}
	}
	matched := map[string]string{}
	var unmatched []string
	for _, n := range names {
		if canon, ok := a.catalog.Canonical(n); ok {
			matched[n] = canon
		} else {
			unmatched = append(unmatched, n)
		}
	}
	writeJSON(w, map[string]any{"shape": shape, "matched": matched, "unmatched": unmatched}, http.StatusOK)
}
