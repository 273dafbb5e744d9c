// Package module wires detection into the API using modkit
package module

import (
	"net/http"

	modkit "sleuth/internal/modkit"
	"sleuth/internal/modkit/httpkit"
	str "sleuth/internal/platform/strings"
	andom "sleuth/internal/services/analyses/domain"
	"sleuth/internal/services/detect/domain"
	dethttp "sleuth/internal/services/detect/http"
)

// PortsIn are the dependencies the detect module needs injected.
// The engine owns the cache, queue and metrics; the module only mounts transport
type PortsIn struct {
	Detector domain.Detector
	Records  andom.ServicePort
}

// Ports exposed by the detect module
type Ports struct {
	Detector domain.Detector
}

// Module implements the detect module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the detect module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("detect"), modkit.WithPrefix("/detect")}, opts...)...)

	in, ok := b.Ports.(PortsIn)
	if !ok || in.Detector == nil {
		panic("detect.Module requires PortsIn with a non nil Detector")
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
	}
	m.ports = Ports{Detector: in.Detector}

	external := b.Register
	m.register = func(r httpkit.Router) {
		dethttp.Register(r, in.Detector, in.Records)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
