// Package resilience provides the Bulkhead used to cap how many
// transcriptions run against the engine at once.
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "whisper", MaxConcurrent: 2, MaxWait: 30 * time.Second})
//	err := bh.Execute(ctx, func() error { return transcribe(ctx) })
package resilience
