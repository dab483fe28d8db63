// Package logger is the structured logger used across asr-server, built on
// zerolog.
//
// Output goes to stdout, stderr, or a size-rotated file. Component loggers
// carry a "component" field and take optional field maps:
//
//	log := logger.WithComponent("transcribe")
//	log.Info("transcribed", logger.Fields("language", "en"))
package logger
