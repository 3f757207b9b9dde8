package mid

import (
	"context"
	"net/http"

	"github.com/meshledger/meshledger/business/sys/metrics"
	"github.com/meshledger/meshledger/foundation/web"
)

// Metrics updates program counters. It is expected to run outside of the
// Errors middleware so the status code of a failed request is known.
func Metrics(m *metrics.Metrics) web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			statusCode := http.StatusInternalServerError
			if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
				statusCode = v.StatusCode
			}

			// Handle updating the metrics that can be handled here.
			m.AddRequest(r.Method, statusCode)
			if err != nil || statusCode >= http.StatusBadRequest {
				m.AddError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
