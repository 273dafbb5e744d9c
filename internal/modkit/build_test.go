package modkit

import (
	"net/http"
	"testing"

	"sleuth/internal/modkit/httpkit"
)

func TestBuildDefaults(t *testing.T) {
	b := Build()

	if b.Name != "" || b.Prefix != "" {
		t.Fatalf("zero options must leave name/prefix empty: %+v", b)
	}
	if b.Subrouter == nil || b.Register == nil {
		t.Fatalf("hooks must default to non nil")
	}
	// identity subrouter, no-op register
	var r httpkit.Router
	if got := b.Subrouter(r); got != r {
		t.Fatalf("default subrouter must be identity")
	}
	b.Register(r)
}

func TestBuildAppliesOptions(t *testing.T) {
	mw := func(next http.Handler) http.Handler { return next }

	type ports struct{ v int }
	b := Build(
		WithName("detect"),
		WithPrefix("/detect"),
		WithMiddlewares(mw, mw),
		WithPorts(ports{v: 7}),
	)

	if b.Name != "detect" || b.Prefix != "/detect" {
		t.Fatalf("name/prefix not applied: %+v", b)
	}
	if len(b.Mw) != 2 {
		t.Fatalf("middlewares = %d, want 2", len(b.Mw))
	}
	p, ok := b.Ports.(ports)
	if !ok || p.v != 7 {
		t.Fatalf("ports not carried: %#v", b.Ports)
	}
}

func TestBuildCopiesMiddlewareSlice(t *testing.T) {
	mw := func(next http.Handler) http.Handler { return next }
	src := []func(http.Handler) http.Handler{mw}

	b := Build(WithMiddlewares(src...))
	src[0] = nil

	if b.Mw[0] == nil {
		t.Fatalf("Build must copy the middleware slice")
	}
}
