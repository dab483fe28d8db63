// Package util holds small parsing helpers shared by the config sections.
package util
