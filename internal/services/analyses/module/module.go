// Package module wires analyses into the API using modkit
package module

import (
	"net/http"

	modkit "sleuth/internal/modkit"
	"sleuth/internal/modkit/httpkit"
	str "sleuth/internal/platform/strings"
	andom "sleuth/internal/services/analyses/domain"
	anhttp "sleuth/internal/services/analyses/http"
	anrepo "sleuth/internal/services/analyses/repo"
	ansvc "sleuth/internal/services/analyses/service"
)

// Ports exposed by the analyses module
type Ports struct {
	Records andom.ServicePort
}

// Module implements the analyses module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc ansvc.Service
}

// New constructs the analyses module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("analyses"), modkit.WithPrefix("/analyses")}, opts...)...)

	svc := ansvc.New(deps.PG, anrepo.NewPG())

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Records: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		anhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Service returns the analyses service for in-process callers
func (m *Module) Service() ansvc.Service { return m.svc }

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
