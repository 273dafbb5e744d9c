// Package api provides the HTTP API for the application
package api

import (
	"sleuth/internal/platform/cache"
	"sleuth/internal/platform/config"
	"sleuth/internal/platform/metrics"
	phttp "sleuth/internal/platform/net/http"
	"sleuth/internal/platform/queue"
	"sleuth/internal/platform/store"

	"sleuth/internal/modkit"
	"sleuth/internal/modkit/httpkit"

	adminmod "sleuth/internal/services/admin/module"
	andom "sleuth/internal/services/analyses/domain"
	analysesmod "sleuth/internal/services/analyses/module"
	detectdom "sleuth/internal/services/detect/domain"
	detectmod "sleuth/internal/services/detect/module"
	metamod "sleuth/internal/services/meta/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store

	// live engine internals, shared with the admin surface
	Detector detectdom.Detector
	Queue    *queue.Queue
	Cache    *cache.Cache[detectdom.ResultSet]
	Recorder *metrics.Recorder

	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	// analyses persistence is optional; without postgres the detect
	// endpoints still work, they just do not record history
	var records andom.ServicePort
	mods := make([]modkit.Module, 0, 4)
	if deps.PG != nil {
		am := analysesmod.New(deps)
		records = am.Service()
		mods = append(mods, am)
	}

	mods = append(mods,
		detectmod.New(deps, modkit.WithPorts(detectmod.PortsIn{
			Detector: opt.Detector,
			Records:  records,
		})),
		adminmod.New(deps, modkit.WithPorts(adminmod.PortsIn{
			Queue:    opt.Queue,
			Cache:    opt.Cache,
			Recorder: opt.Recorder,
		})),
		metamod.New(deps),
	)

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
