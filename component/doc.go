// Package component defines the lifecycle contract (Start, Stop, Health)
// shared by the server's long-lived parts, and the Registry that starts them
// in order and stops them in reverse.
package component
