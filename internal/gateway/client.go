package gateway

import (
	"sync"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

var (
	clientOnce   sync.Once
	sharedClient *client.API
)

// sharedAPI returns the process-wide Stripe client, configuring it on first
// use. Redundant or concurrent calls are safe: sync.Once guarantees exactly
// one configured client per process, and every gateway operation goes through
// here before touching the wire.
func sharedAPI(apiKey string) *client.API {
	clientOnce.Do(func() {
		api := &client.API{}
		api.Init(apiKey, nil)
		sharedClient = api
	})
	return sharedClient
}

// newAPIWithBackend builds a dedicated client against a substituted backend.
// Used by tests to observe wire calls without a network dependency.
func newAPIWithBackend(apiKey string, backend stripe.Backend) *client.API {
	api := &client.API{}
	api.Init(apiKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return api
}
