package uploads

import (
	"errors"
	"fmt"
)

var (
	ErrKeyTooShort          = errors.New("object key has too few segments to derive upload identity")
	ErrUploaderNotDecodable = errors.New("failed to percent-decode uploader segment")
)

func ErrorKeyTooShort(key string) error {
	return fmt.Errorf("%w: key=%s", ErrKeyTooShort, key)
}

func ErrorUploaderNotDecodable(segment string, cause error) error {
	return fmt.Errorf("%w: segment=%s cause=%v", ErrUploaderNotDecodable, segment, cause)
}
