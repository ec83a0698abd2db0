package events

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotDecodable = errors.New("failed to decode upload notification body")
	ErrKeyNotDecodable   = errors.New("failed to percent-decode object key")
	ErrMissingObjectInfo = errors.New("upload notification missing bucket name or object key")
)

func ErrorEventNotDecodable(cause error) error {
	return fmt.Errorf("%w: cause=%v", ErrEventNotDecodable, cause)
}

func ErrorKeyNotDecodable(key string, cause error) error {
	return fmt.Errorf("%w: key=%s cause=%v", ErrKeyNotDecodable, key, cause)
}

func ErrorMissingObjectInfo() error {
	return ErrMissingObjectInfo
}
