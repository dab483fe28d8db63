package provider

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Provider is the base interface all providers implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable reports whether the provider can serve requests right now.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider instance from a config section.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// DecodeConfig decodes a loosely typed config section (as produced by viper)
// into out, a pointer to a struct with mapstructure tags. Duration strings
// like "90s" are converted.
func DecodeConfig(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("provider config decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode provider config: %w", err)
	}
	return nil
}
