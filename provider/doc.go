// Package provider is a small generic framework for swappable backends.
//
// A Provider has a name and an availability check. RequestResponse[I, O]
// adds Execute. Providers are created by name from a Registry of factories
// and owned by a Manager, which picks one per call through a Selector.
// Initializable and Closeable hooks run on Manager.Initialize and
// Manager.Close.
//
// Cross-cutting behavior is layered with middlewares:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics, "transcribe"),
//	    provider.WithTracing[In, Out]("asr-server"),
//	)(raw)
//	wrapped = provider.WithResilience(wrapped, provider.ResilienceConfig{Timeout: time.Minute})
package provider
