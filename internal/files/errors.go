package files

import (
	"errors"
	"fmt"
)

var (
	ErrObjectAccessDenied = errors.New("access denied to object")
	ErrObjectNotFound     = errors.New("object not found")
	ErrObjectNotRetrieved = errors.New("object not retrieved")
	ErrReadingObjectBody  = errors.New("failed to read object body")
)

func ErrorObjectAccessDenied(uri string) error {
	return fmt.Errorf("%w: uri=%s", ErrObjectAccessDenied, uri)
}

func ErrorObjectNotFound(uri string) error {
	return fmt.Errorf("%w: uri=%s", ErrObjectNotFound, uri)
}

func ErrorObjectNotRetrieved(uri string, cause error) error {
	return fmt.Errorf("%w: uri=%s cause=%v", ErrObjectNotRetrieved, uri, cause)
}

func ErrorReadingObjectBody(uri string, cause error) error {
	return fmt.Errorf("%w: uri=%s cause=%v", ErrReadingObjectBody, uri, cause)
}
