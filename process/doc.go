// Package process runs subprocesses with process-group cancellation.
package process
