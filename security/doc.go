// Package security holds the TLS settings for outbound connections to
// engine sidecars.
//
//	tr, err := cfg.TLS.Transport()
//	client := &http.Client{Transport: tr, Timeout: cfg.Timeout}
package security
