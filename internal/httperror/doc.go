// Package httperror classifies failures of an HTTP exchange with the
// tournament API so that diagnostics and log events can name the cause.
package httperror
