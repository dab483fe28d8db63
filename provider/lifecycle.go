package provider

import "context"

// Initializable is implemented by providers that need setup before serving,
// such as checking that a binary and model file exist. Manager.Initialize
// calls Init.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable is implemented by providers holding resources. Manager.Close
// calls Close.
type Closeable interface {
	Close(ctx context.Context) error
}
