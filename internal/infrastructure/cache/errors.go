package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned when a cache is created with capacity < 1.
	ErrInvalidCapacity = errors.New("cache capacity must be at least 1")
	// ErrNilLoader is returned when a loading cache is created without a loader.
	ErrNilLoader = errors.New("cache loader must not be nil")
	// ErrLoaderPanic is wrapped by the LoadError of a loader that panicked.
	ErrLoaderPanic = errors.New("loader panicked")
)

// LoadError reports a failed load. Every caller that joined the load receives
// the same *LoadError, and errors.Is/As reach the loader's error through it.
type LoadError struct {
	Key any
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %v: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
