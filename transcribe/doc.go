// Package transcribe implements POST /transcribe: persist the upload to a
// scratch file, run the shared engine over it with voice-activity filtering,
// join the returned segments and always remove the scratch file.
//
// Service holds the request flow and is reused by the one-shot CLI command;
// Handler adapts it to Gin.
package transcribe
