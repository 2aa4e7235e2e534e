// Package async runs submitted actions on worker goroutines.
package async
