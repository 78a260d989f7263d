package imagegen

import (
	"errors"
	"fmt"
)

// ErrEmptyPrompt is returned when a submission's effective prompt is empty
// after trimming. The generator reports it synchronously, before touching
// the cache or the network.
var ErrEmptyPrompt = errors.New("imagegen: prompt cannot be empty")

// ErrSuperseded is returned to a Generate call whose batch was cancelled
// because a newer submission started. Superseded batches are never cached.
var ErrSuperseded = errors.New("imagegen: submission superseded by a newer one")

// UnknownStyleError is returned when a submission names a style preset
// that does not exist.
type UnknownStyleError struct {
	Name string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("imagegen: unknown style preset %q", e.Name)
}

// ModelListError wraps a failure to fetch the remote model list. It is
// non-fatal: callers receive the built-in default list alongside it and
// should surface it as a warning only.
type ModelListError struct {
	Err error
}

func (e *ModelListError) Error() string {
	return fmt.Sprintf("imagegen: model list unavailable: %v", e.Err)
}

func (e *ModelListError) Unwrap() error {
	return e.Err
}
