// pkg/router/router.go
package router

import (
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/svishnu88/jlserve/pkg/config"
	"github.com/svishnu88/jlserve/pkg/lifecycle"
	"github.com/svishnu88/jlserve/pkg/middleware/logger"
	hmetrics "github.com/svishnu88/jlserve/pkg/middleware/metrics"
	"github.com/svishnu88/jlserve/pkg/registry"
	"github.com/svishnu88/jlserve/pkg/schema"
	httpx "github.com/svishnu88/jlserve/pkg/transport/httpx"
)

// BuildDeps carries the collaborators the route table is assembled from.
type BuildDeps struct {
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
	Runtime config.Config
}

// BuildRouter binds one POST route per declared endpoint against the
// manager's shared instance. The route table is built once and is
// immutable for the life of the server.
func BuildRouter(reg *registry.Registry, mgr *lifecycle.Manager, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}

	for _, ep := range reg.Endpoints() {
		h := dispatch(ep, mgr)
		if pol, ok := d.Runtime.PolicyFor(ep.Path); ok {
			if rl := pol.RateLimit; rl != nil {
				h = withRateLimit(h, rl.RPS, rl.Burst)
			}
			if pol.TimeoutMS > 0 {
				h = withTimeout(h, time.Duration(pol.TimeoutMS)*time.Millisecond)
			}
		}
		r.Post(ep.Path, h)
	}
	return r.Mux()
}

// dispatch builds the bound handler for one endpoint: strict input decode,
// method invocation against the shared instance, output encode. Every
// failure is contained within the request that caused it.
func dispatch(ep registry.EndpointDeclaration, mgr *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "request body unreadable")
			return
		}

		in, err := ep.Input.Decode(body)
		if err != nil {
			// Client error; the method is never invoked.
			writeProblems(w, http.StatusUnprocessableEntity, schema.Problems(err))
			return
		}

		out, err := ep.Call(r.Context(), mgr.Instance(), in)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}

		payload, err := ep.Output.Encode(out)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "response encoding failed: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", ep.Output.Codec.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}
