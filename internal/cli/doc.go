// Package cli is the command line front end. Each command collects one
// request, validates it, runs it on a worker goroutine and prints the
// worker's activity log until it finishes.
package cli
