package policy

import (
	"context"
	"testing"
)

func TestEvaluateSlugDefaultPolicy(t *testing.T) {
	tests := []struct {
		slug   string
		allow  bool
		reason string
	}{
		{"acme", true, ""},
		{"acme-voice", true, ""},
		{"a", true, ""},
		{"42-agents", true, ""},
		{"admin", false, "reserved_name"},
		{"api", false, "reserved_name"},
		{"www", false, "reserved_name"},
		{"dashboard", false, "reserved_name"},
		{"Acme", false, "invalid_label"},
		{"-leading", false, "invalid_label"},
		{"trailing-", false, "invalid_label"},
		{"has space", false, "invalid_label"},
		{"", false, "invalid_label"},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			dec, err := EvaluateSlug(context.Background(), nil, tt.slug)
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if dec.Allow != tt.allow {
				t.Fatalf("allow = %v, want %v (reasons %v)", dec.Allow, tt.allow, dec.Reasons)
			}
			if tt.reason != "" {
				found := false
				for _, r := range dec.Reasons {
					if r == tt.reason {
						found = true
					}
				}
				if !found {
					t.Fatalf("reasons = %v, want %q", dec.Reasons, tt.reason)
				}
			}
		})
	}
}

func TestEvaluateSlugLengthBound(t *testing.T) {
	long := make([]byte, 41)
	for i := range long {
		long[i] = 'a'
	}
	dec, err := EvaluateSlug(context.Background(), nil, string(long))
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if dec.Allow {
		t.Fatal("41-char slug must be denied")
	}
	dec, err = EvaluateSlug(context.Background(), nil, string(long[:40]))
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !dec.Allow {
		t.Fatalf("40-char slug must be allowed, reasons %v", dec.Reasons)
	}
}
