package resolver

import (
	"strings"
	"testing"
)

func testModels() []ModelInfo {
	return []ModelInfo{
		{Provider: "anthropic", ID: "sonnet"},
		{Provider: "anthropic", ID: "haiku"},
		{Provider: "openai", ID: "gpt"},
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := New(testModels(), nil)

	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"anthropic/sonnet", "anthropic/sonnet", true},
		{"ANTHROPIC/SONNET", "anthropic/sonnet", true},
		{"  Anthropic/Haiku  ", "anthropic/haiku", true},
		{"openai/gpt", "openai/gpt", true},
		{"anthropic/opus", "", false},
		{"sonnet", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := r.Resolve(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveStrictErrorListsOptions(t *testing.T) {
	r := New(testModels(), nil)

	_, err := r.ResolveStrict("anthropic/opus")
	if err == nil {
		t.Fatalf("ResolveStrict() error = nil, want unknown model error")
	}
	msg := err.Error()
	if !strings.Contains(msg, `"anthropic/opus"`) {
		t.Fatalf("error %q does not name the bad token", msg)
	}
	for _, want := range []string{"anthropic/haiku", "anthropic/sonnet", "openai/gpt"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q does not list option %q", msg, want)
		}
	}
}

func TestAllowListIsExactMatch(t *testing.T) {
	r := New(testModels(), []string{"anthropic/sonnet"})

	if _, ok := r.Resolve("anthropic/sonnet"); !ok {
		t.Fatalf("allow-listed model did not resolve")
	}
	if _, ok := r.Resolve("anthropic/haiku"); ok {
		t.Fatalf("model outside allow-list resolved")
	}
	// "anthropic" alone must not act as a prefix filter.
	r = New(testModels(), []string{"anthropic"})
	if !r.Empty() {
		t.Fatalf("partial allow-list entry matched models: %v", r.Options())
	}
}

func TestOptionsSorted(t *testing.T) {
	r := New(testModels(), nil)
	got := r.Options()
	want := []string{"anthropic/haiku", "anthropic/sonnet", "openai/gpt"}
	if len(got) != len(want) {
		t.Fatalf("Options() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Options()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEmptyResolver(t *testing.T) {
	r := New(nil, nil)
	if !r.Empty() {
		t.Fatalf("Empty() = false for no models")
	}
	if _, err := r.ResolveStrict("anything"); err == nil || !strings.Contains(err.Error(), "no models available") {
		t.Fatalf("ResolveStrict() error = %v, want no-models error", err)
	}
}

func TestSkipsIncompleteEntries(t *testing.T) {
	r := New([]ModelInfo{{Provider: "", ID: "x"}, {Provider: "p", ID: ""}, {Provider: "p", ID: "m"}}, nil)
	if got := len(r.Options()); got != 1 {
		t.Fatalf("Options() = %d entries, want 1", got)
	}
}
