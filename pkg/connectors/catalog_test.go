package connectors

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogLookupIsExact(t *testing.T) {
	cat, err := NewCatalog([]Spec{
		{Canonical: "calendar", DisplayName: "Calendar", Aliases: []string{"gcal", "Google Calendar"}},
		{Canonical: "crm", DisplayName: "CRM", Aliases: []string{"salesforce"}},
	})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"calendar", "calendar", true},
		{"gcal", "calendar", true},
		{"GCAL", "calendar", true},
		{"  Google Calendar ", "calendar", true},
		{"salesforce", "crm", true},
		// No fuzzy matching: near misses stay unmatched.
		{"gcall", "", false},
		{"google", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := cat.Canonical(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Canonical(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCatalogRejectsDuplicateAlias(t *testing.T) {
	_, err := NewCatalog([]Spec{
		{Canonical: "calendar", Aliases: []string{"gcal"}},
		{Canonical: "scheduler", Aliases: []string{"GCal"}},
	})
	if err == nil {
		t.Fatal("expected duplicate alias error")
	}
}

func TestCatalogRejectsEmptyCanonical(t *testing.T) {
	_, err := NewCatalog([]Spec{{Canonical: "  "}})
	if err == nil {
		t.Fatal("expected empty canonical error")
	}
}

func TestLoadCatalogMixedFormats(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("calendar.yaml", "canonical: calendar\ndisplay_name: Calendar\naliases:\n  - gcal\n")
	write("crm.json", `{"canonical":"crm","display_name":"CRM","aliases":["salesforce"]}`)
	write("README.md", "not a spec")

	cat, err := LoadCatalog(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := len(cat.Specs()); n != 2 {
		t.Fatalf("specs = %d, want 2", n)
	}
	if canon, ok := cat.Canonical("gcal"); !ok || canon != "calendar" {
		t.Fatalf("gcal -> %q, %v", canon, ok)
	}
	if canon, ok := cat.Canonical("salesforce"); !ok || canon != "crm" {
		t.Fatalf("salesforce -> %q, %v", canon, ok)
	}
}

func TestLoadCatalogEmptyDir(t *testing.T) {
	cat, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.Specs()) != 0 {
		t.Fatal("expected empty catalog")
	}
}
