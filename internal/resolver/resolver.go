// Package resolver maps user-supplied model tokens to canonical provider/id
// strings. Resolution fails closed: an unmatched token is an error naming
// every valid option, never a silent fallback to a default model.
package resolver

import (
	"fmt"
	"sort"
	"strings"
)

// ModelInfo identifies one model known to the host registry.
type ModelInfo struct {
	Provider string
	ID       string
}

// Key returns the canonical lowercase provider/id composite key.
func (m ModelInfo) Key() string {
	return strings.ToLower(m.Provider + "/" + m.ID)
}

// Resolver resolves model tokens against a fixed set of available models,
// optionally narrowed by an exact-match allow-list. It holds no I/O and no
// global state; the allow-list is injected by the caller at construction.
type Resolver struct {
	models  map[string]string // lowercase key -> canonical provider/id
	options []string          // sorted canonical keys, for error messages
}

// New builds a Resolver from the available models and an allow-list of
// provider/id strings. An empty or nil allow-list means every model is
// eligible; a non-empty one is an exact-match filter, not a substring search.
func New(available []ModelInfo, enabled []string) *Resolver {
	allow := make(map[string]struct{}, len(enabled))
	for _, e := range enabled {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allow[e] = struct{}{}
		}
	}

	r := &Resolver{models: make(map[string]string, len(available))}
	for _, m := range available {
		if m.Provider == "" || m.ID == "" {
			continue
		}
		key := m.Key()
		if len(allow) > 0 {
			if _, ok := allow[key]; !ok {
				continue
			}
		}
		if _, exists := r.models[key]; exists {
			continue
		}
		r.models[key] = m.Provider + "/" + m.ID
		r.options = append(r.options, key)
	}
	sort.Strings(r.options)
	return r
}

// Resolve returns the canonical provider/id for a case-insensitive token.
func (r *Resolver) Resolve(token string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(token))
	if key == "" {
		return "", false
	}
	canonical, ok := r.models[key]
	return canonical, ok
}

// ResolveStrict resolves a token or reports an error listing all valid
// options.
func (r *Resolver) ResolveStrict(token string) (string, error) {
	if canonical, ok := r.Resolve(token); ok {
		return canonical, nil
	}
	if len(r.options) == 0 {
		return "", fmt.Errorf("unknown model %q: no models available", token)
	}
	return "", fmt.Errorf("unknown model %q: valid models are %s", token, strings.Join(r.options, ", "))
}

// Options returns the sorted canonical keys of all resolvable models.
func (r *Resolver) Options() []string {
	out := make([]string, len(r.options))
	copy(out, r.options)
	return out
}

// Empty reports whether the resolver knows no models at all.
func (r *Resolver) Empty() bool {
	return len(r.models) == 0
}
