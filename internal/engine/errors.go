package engine

import "fmt"

// IOError wraps an open/read/write failure. It is fatal to the invocation
// that raised it; the engine never retries.
type IOError struct {
	Op   string // "open", "create", "read", "write", "close"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
