// Package http provides http transport for analyses
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"sleuth/internal/modkit/httpkit"
	"sleuth/internal/services/analyses/domain"
	svc "sleuth/internal/services/analyses/service"
)

// Register mounts analyses endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// recent analyses, newest first
	httpkit.PostJSON[domain.ListInput](r, "/list", h.list)

	// single analysis by id
	httpkit.Get(r, "/{id}", h.get)
}

type handlers struct{ svc svc.Service }

func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) (any, error) {
	return h.svc.ListRecent(r.Context(), in)
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}
