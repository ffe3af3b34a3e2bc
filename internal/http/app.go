package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/salescrm/order-service/internal/config"
	"github.com/salescrm/order-service/internal/events"
	httpopenapi "github.com/salescrm/order-service/internal/http/openapi"
	"github.com/salescrm/order-service/internal/orders"
	"github.com/salescrm/order-service/internal/ranking"
	"github.com/salescrm/order-service/internal/store"
)

// App bundles the handlers' dependencies.
type App struct {
	Cfg        config.Config
	Store      store.Store
	Orders     *orders.Service
	Rankings   *ranking.Engine
	Dispatcher *events.Dispatcher
	closing    bool
	started    time.Time
}

// NewApp wires the HTTP layer to the domain services. Dispatcher may be
// nil when no event pipeline runs (tests).
func NewApp(cfg config.Config, st store.Store, svc *orders.Service, rk *ranking.Engine, d *events.Dispatcher) *App {
	return &App{Cfg: cfg, Store: st, Orders: svc, Rankings: rk, Dispatcher: d, started: time.Now()}
}

// StartShutdown stops accepting lifecycle events so the queue can drain.
func (a *App) StartShutdown() {
	a.closing = true
	if a.Dispatcher != nil {
		a.Dispatcher.CloseIntake()
	}
}

// requireSeller returns the caller identity or writes a 401.
func requireSeller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := SellerIDFromContext(r.Context())
	if id == "" {
		WriteJSONError(w, http.StatusUnauthorized, "missing_seller", "X-Seller-Id header is required")
		return "", false
	}
	return id, true
}

// decodeJSON enforces the content type and strict field checking the
// API promises.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, _ *http.Request) {
	m := map[string]any{
		"uptime_sec": time.Since(a.started).Seconds(),
	}
	if a.Dispatcher != nil {
		enq, pub, failed, backlog, depth := a.Dispatcher.Metrics()
		m["events_enqueued"] = enq
		m["events_published"] = pub
		m["events_failed"] = failed
		m["backlog_size"] = backlog
		m["queue_depth"] = depth
		m["worker_count"] = a.Dispatcher.WorkerCount()
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
