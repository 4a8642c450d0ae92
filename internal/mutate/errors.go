package mutate

import (
	"errors"
	"fmt"
)

// ErrFileTooLarge is reported per upload when a file exceeds the size cap.
var ErrFileTooLarge = errors.New("file too large")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
