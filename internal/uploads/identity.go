package uploads

import (
	"net/url"
	"path"
	"strings"
)

// ReservedPrefix marks keys written under the access-scoped storage layout.
// Only the first segment is checked; a tenant may legitimately be named
// "private" anywhere else in the key.
const ReservedPrefix = "private"

// Identity carries the upload provenance derived from an object key.
type Identity struct {
	TenantID        string
	UploaderAddress string
	Filename        string
	UploadID        string
}

// ParseIdentity derives the tenant, uploader address and upload ID from an
// object key of the form "tenant/uploader/filename" or
// "private/tenant/uploader/filename". The uploader segment is percent-decoded
// after extraction; the upload ID is the filename with its final extension
// stripped.
func ParseIdentity(key string) (Identity, error) {
	parts := strings.Split(key, "/")
	if parts[0] == ReservedPrefix {
		parts = parts[1:]
	}
	if len(parts) < 3 {
		return Identity{}, ErrorKeyTooShort(key)
	}

	uploader, err := url.QueryUnescape(parts[1])
	if err != nil {
		return Identity{}, ErrorUploaderNotDecodable(parts[1], err)
	}

	filename := strings.Join(parts[2:], "/")

	return Identity{
		TenantID:        parts[0],
		UploaderAddress: uploader,
		Filename:        filename,
		UploadID:        strings.TrimSuffix(filename, path.Ext(filename)),
	}, nil
}
