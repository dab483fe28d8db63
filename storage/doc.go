// Package storage manages the scratch files uploads are written to before
// transcription. Backends register a factory; local filesystem storage is
// the only one shipped.
package storage
