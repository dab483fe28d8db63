package transcription

import "github.com/kbukum/asr-server/provider"

// NewRegistry creates an empty registry of engine factories.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
