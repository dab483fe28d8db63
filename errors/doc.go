// Package errors defines the AppError type returned by every failing
// operation in the server, its error codes, and the JSON body written to
// clients when a request fails.
package errors
