package provider

import "context"

// RequestResponse is a provider that turns one input into one output:
// an HTTP call, a subprocess run.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}
