package secondary

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when an insert collides with an existing name.
var ErrDuplicateName = errors.New("duplicate name")

// StorageError wraps a failure of the underlying storage medium with the
// operation and the record name it concerned.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q failed: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
