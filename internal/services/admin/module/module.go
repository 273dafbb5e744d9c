// Package module wires the admin surface into the API using modkit
package module

import (
	"net/http"

	modkit "sleuth/internal/modkit"
	"sleuth/internal/modkit/httpkit"
	"sleuth/internal/platform/cache"
	"sleuth/internal/platform/metrics"
	"sleuth/internal/platform/queue"
	str "sleuth/internal/platform/strings"
	admhttp "sleuth/internal/services/admin/http"
	admsvc "sleuth/internal/services/admin/service"
	detectdom "sleuth/internal/services/detect/domain"
)

// PortsIn are the live engine internals the admin surface inspects
type PortsIn struct {
	Queue    *queue.Queue
	Cache    *cache.Cache[detectdom.ResultSet]
	Recorder *metrics.Recorder
}

// Module implements the admin module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *admsvc.Svc
}

// New constructs the admin module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("admin"), modkit.WithPrefix("/admin")}, opts...)...)

	in, ok := b.Ports.(PortsIn)
	if !ok {
		panic("admin.Module requires PortsIn with queue, cache and recorder")
	}
	svc := admsvc.New(in.Queue, in.Cache, in.Recorder)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		admhttp.Register(r, m.svc)
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
