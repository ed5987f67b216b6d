package provider

import (
	"slices"
	"strings"
	"sync"
)

// CredentialChecker is the read side of the registry needed for provider selection.
type CredentialChecker interface {
	HasCredential(id ID) bool
}

// Registry holds provider specs and the runtime credentials for them.
// It is read by every generation and mutated only by explicit settings updates.
type Registry struct {
	mu          sync.RWMutex
	specs       map[ID]Spec
	credentials map[ID]string
	order       []ID
}

// NewRegistry creates a registry. Missing specs fall back to DefaultSpecs and
// an empty order falls back to DefaultFallbackOrder.
func NewRegistry(specs map[ID]Spec, order []ID) *Registry {
	merged := DefaultSpecs()
	for id, spec := range specs {
		base := merged[id]
		if spec.Endpoint != "" {
			base.Endpoint = spec.Endpoint
		}
		if spec.Model != "" {
			base.Model = spec.Model
		}
		if spec.JSONMode != "" {
			base.JSONMode = spec.JSONMode
		}
		merged[id] = base
	}

	var chats []ID
	for _, id := range order {
		if id.Kind() == KindChat && id.Valid() && !slices.Contains(chats, id) {
			chats = append(chats, id)
		}
	}
	if len(chats) == 0 {
		chats = DefaultFallbackOrder()
	}

	return &Registry{
		specs:       merged,
		credentials: make(map[ID]string),
		order:       chats,
	}
}

// SetCredentials merges a partial credential update. An empty value clears the
// credential for that provider.
func (r *Registry) SetCredentials(update map[ID]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, key := range update {
		key = strings.TrimSpace(key)
		if key == "" {
			delete(r.credentials, id)
			continue
		}
		r.credentials[id] = key
	}
}

func (r *Registry) HasCredential(id ID) bool {
	_, ok := r.Credential(id)
	return ok
}

// Credential returns the configured key for a provider.
func (r *Registry) Credential(id ID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.credentials[id]
	return key, ok && key != ""
}

func (r *Registry) Spec(id ID) Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.specs[id]
}

// FallbackOrder returns a copy of the chat provider order.
func (r *Registry) FallbackOrder() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// IsHybridEligible reports whether the multimodal provider and at least one
// chat provider are credentialed.
func (r *Registry) IsHybridEligible() bool {
	if !r.HasCredential(Gemini) {
		return false
	}
	for _, id := range r.FallbackOrder() {
		if r.HasCredential(id) {
			return true
		}
	}
	return false
}

// Status reports credential presence for every known provider.
func (r *Registry) Status() map[ID]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[ID]bool, len(All))
	for _, id := range All {
		out[id] = r.credentials[id] != ""
	}
	return out
}

// SelectNextEligible walks order and returns the first credentialed provider
// that has not been attempted yet.
func SelectNextEligible(attempted map[ID]bool, checker CredentialChecker, order []ID) (ID, bool) {
	for _, id := range order {
		if attempted[id] {
			continue
		}
		if checker.HasCredential(id) {
			return id, true
		}
	}
	return "", false
}
