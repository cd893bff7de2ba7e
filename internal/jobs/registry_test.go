package jobs

import (
	"testing"
)

type fakeHandler struct {
	jobType string
}

func (h *fakeHandler) Type() string       { return h.jobType }
func (h *fakeHandler) Run(*Context) error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&fakeHandler{jobType: "score_batch"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := r.Get("score_batch"); !ok {
		t.Fatalf("expected handler for score_batch")
	}
	if _, ok := r.Get("unknown"); ok {
		t.Fatalf("did not expect handler for unknown type")
	}

	// Duplicate and degenerate registrations are rejected.
	if err := r.Register(&fakeHandler{jobType: "score_batch"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := r.Register(nil); err == nil {
		t.Fatalf("expected nil handler to fail")
	}
	if err := r.Register(&fakeHandler{}); err == nil {
		t.Fatalf("expected empty type to fail")
	}
}
