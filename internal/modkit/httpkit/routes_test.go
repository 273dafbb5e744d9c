package httpkit

import (
	"net/http"
	"testing"

	phttp "sleuth/internal/platform/net/http"
)

type fakeRouter struct {
	prefixes  []string
	useCalls  int
	lastMWLen int

	verbCalls []struct {
		verb string
		path string
	}
}

func (f *fakeRouter) Mux() http.Handler { return http.NewServeMux() }

func (f *fakeRouter) Route(prefix string, fn func(Router)) {
	f.prefixes = append(f.prefixes, prefix)
	fn(f)
}

func (f *fakeRouter) Group(fn func(Router)) { fn(f) }

func (f *fakeRouter) Use(mw ...func(http.Handler) http.Handler) {
	f.useCalls++
	f.lastMWLen = len(mw)
}

func (f *fakeRouter) Handle(path string, _ http.Handler) { f.record("HANDLE", path) }
func (f *fakeRouter) Get(path string, _ phttp.Handler)   { f.record("GET", path) }
func (f *fakeRouter) Post(path string, _ phttp.Handler)  { f.record("POST", path) }
func (f *fakeRouter) Put(path string, _ phttp.Handler)   { f.record("PUT", path) }
func (f *fakeRouter) Delete(path string, _ phttp.Handler) {
	f.record("DELETE", path)
}

func (f *fakeRouter) record(verb, path string) {
	f.verbCalls = append(f.verbCalls, struct {
		verb string
		path string
	}{verb, path})
}

func TestMountUnderAppliesMiddlewareAndCallsMount(t *testing.T) {
	root := &fakeRouter{}

	mwA := func(next http.Handler) http.Handler { return next }
	mwB := func(next http.Handler) http.Handler { return next }

	MountUnder(root, "/api/v1", []func(http.Handler) http.Handler{mwA, mwB}, func(sub Router) {
		sub.Get("/ping", phttp.Handle(func(*http.Request) phttp.Response {
			return phttp.NoContent()
		}))
	})

	if len(root.prefixes) != 1 || root.prefixes[0] != "/api/v1" {
		t.Fatalf("expected Route with /api/v1, got %v", root.prefixes)
	}
	if root.useCalls != 1 || root.lastMWLen != 2 {
		t.Fatalf("expected Use once with 2 middleware, got calls=%d len=%d", root.useCalls, root.lastMWLen)
	}
	if len(root.verbCalls) != 1 || root.verbCalls[0].verb != "GET" || root.verbCalls[0].path != "/ping" {
		t.Fatalf("expected GET /ping registration, got %+v", root.verbCalls)
	}
}

func TestMountUnderNoMiddlewareSkipsUse(t *testing.T) {
	root := &fakeRouter{}

	MountUnder(root, "/x", nil, func(sub Router) {
		sub.Delete("/gone", phttp.Handle(func(*http.Request) phttp.Response {
			return phttp.NoContent()
		}))
	})

	if root.useCalls != 0 {
		t.Fatalf("expected Use to not be called when mw is empty, got %d", root.useCalls)
	}
	if len(root.verbCalls) != 1 || root.verbCalls[0].verb != "DELETE" {
		t.Fatalf("expected DELETE registration, got %+v", root.verbCalls)
	}
}

func TestMountAPIV1Prefix(t *testing.T) {
	root := &fakeRouter{}

	MountAPIV1(root, nil, func(api Router) {
		api.Post("/detect/text", phttp.Handle(func(*http.Request) phttp.Response {
			return phttp.NoContent()
		}))
	})

	if len(root.prefixes) != 1 || root.prefixes[0] != "/api/v1" {
		t.Fatalf("expected /api/v1 prefix, got %v", root.prefixes)
	}
	if len(root.verbCalls) != 1 || root.verbCalls[0].path != "/detect/text" {
		t.Fatalf("expected POST /detect/text, got %+v", root.verbCalls)
	}
}
