package httpprovider

import (
	"context"
	"net/http"
)

// newRequest builds a GET request for url bound to ctx, matching the
// helper every handler in this package uses before handing the request
// to the resilient client for authentication and dispatch.
func newRequest(ctx context.Context, url string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, "GET", url, nil)
}
