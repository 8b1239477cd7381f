package server

import (
	"github.com/poiesic/expertfind/core"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the wire form of a query outcome. Exactly one of Data and Error
// is set, and Status says which.
type Result struct {
	Status string               `json:"status"`
	Data   *core.SearchResponse `json:"data,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Success wraps a response.
func Success(resp *core.SearchResponse) Result {
	return Result{Status: StatusOK, Data: resp}
}

// Failure wraps an error message.
func Failure(msg string) Result {
	return Result{Status: StatusError, Error: msg}
}
