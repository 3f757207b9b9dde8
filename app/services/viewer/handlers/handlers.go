// Package handlers contains the full set of handler functions and routes
// supported by the web api.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/meshledger/meshledger/business/sys/metrics"
	"github.com/meshledger/meshledger/business/web/mid"
	"github.com/meshledger/meshledger/foundation/web"
	"go.uber.org/zap"
)

// UIConfig contains all the mandatory systems required by the viewer.
type UIConfig struct {
	Build    string
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Metrics  *metrics.Metrics
	NodeHost string
}

// UIMux constructs an http.Handler with all application routes defined.
func UIMux(cfg UIConfig) (*web.App, error) {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Metrics(cfg.Metrics),
		mid.Errors(cfg.Log),
		mid.Panics(cfg.Metrics),
	)

	// Register the index page for the website.
	ig, err := newIndex(cfg.Build, cfg.NodeHost)
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}
	app.Handle(http.MethodGet, "", "/", ig.handler)

	// Register the prometheus endpoint.
	mh := cfg.Metrics.Handler()
	f := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		web.SetStatusCode(ctx, http.StatusOK)
		mh.ServeHTTP(w, r)
		return nil
	}
	app.Handle(http.MethodGet, "", "/metrics", f)

	return app, nil
}
