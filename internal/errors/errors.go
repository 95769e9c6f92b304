package errors

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

func NewInternal(format string, a ...interface{}) error {
	return fmt.Errorf("INTERNAL: "+format, a...)
}

func NewNotFound(format string, a ...interface{}) error {
	return fmt.Errorf("NOT FOUND: "+format, a...)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
