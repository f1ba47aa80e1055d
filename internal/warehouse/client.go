// Package warehouse wraps the managed GraphQL data warehouse endpoint.
//
// Every query and mutation goes through Run with its values passed as GraphQL
// variables. Nothing in this service splices request values into query text.
package warehouse

import (
	"context"
	"net/http"
	"time"

	"github.com/machinebox/graphql"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
)

// Client is a thin parameter-binding wrapper around the warehouse endpoint.
type Client struct {
	gql     *graphql.Client
	timeout time.Duration
}

// New creates a warehouse client for the given endpoint URL with a fixed
// per-request timeout.
func New(endpoint string, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		gql:     graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		timeout: timeout,
	}
}

// Run executes one GraphQL operation. vars are sent as GraphQL variables and
// the response data is decoded into out. Network failures, non-2xx responses
// and GraphQL error arrays all surface as a remote error; no partial result is
// decoded.
func (c *Client) Run(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.gql.Run(ctx, req, out); err != nil {
		return errors.Remote(err, "warehouse query failed")
	}
	return nil
}

// Ping issues a minimal query to verify the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Typename string `json:"__typename"`
	}
	return c.Run(ctx, `query { __typename }`, nil, &out)
}
