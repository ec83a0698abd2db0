package uploads

import (
	"errors"
	"testing"
)

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		tenant   string
		uploader string
		filename string
		uploadID string
	}{
		{
			name:     "plain key",
			key:      "acme/jane%40x.com/manifest.xlsx",
			tenant:   "acme",
			uploader: "jane@x.com",
			filename: "manifest.xlsx",
			uploadID: "manifest",
		},
		{
			name:     "reserved prefix with nested filename",
			key:      "private/acme/jane%40x.com/sub/manifest.xlsx",
			tenant:   "acme",
			uploader: "jane@x.com",
			filename: "sub/manifest.xlsx",
			uploadID: "sub/manifest",
		},
		{
			name:     "tenant named private beyond first segment",
			key:      "acme/private/uploads.xlsx",
			tenant:   "acme",
			uploader: "private",
			filename: "uploads.xlsx",
			uploadID: "uploads",
		},
		{
			name:     "filename without extension",
			key:      "acme/jane%40x.com/manifest",
			tenant:   "acme",
			uploader: "jane@x.com",
			filename: "manifest",
			uploadID: "manifest",
		},
		{
			name:     "multiple dots keeps all but last extension",
			key:      "acme/jane%40x.com/week.31.xlsx",
			tenant:   "acme",
			uploader: "jane@x.com",
			filename: "week.31.xlsx",
			uploadID: "week.31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := ParseIdentity(tt.key)
			if err != nil {
				t.Fatalf("ParseIdentity(%q) returned error: %v", tt.key, err)
			}

			if identity.TenantID != tt.tenant {
				t.Errorf("TenantID = %q, want %q", identity.TenantID, tt.tenant)
			}
			if identity.UploaderAddress != tt.uploader {
				t.Errorf("UploaderAddress = %q, want %q", identity.UploaderAddress, tt.uploader)
			}
			if identity.Filename != tt.filename {
				t.Errorf("Filename = %q, want %q", identity.Filename, tt.filename)
			}
			if identity.UploadID != tt.uploadID {
				t.Errorf("UploadID = %q, want %q", identity.UploadID, tt.uploadID)
			}
		})
	}
}

func TestParseIdentityKeyTooShort(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "two segments", key: "acme/manifest.xlsx"},
		{name: "one segment", key: "manifest.xlsx"},
		{name: "empty key", key: ""},
		{name: "reserved prefix with three segments", key: "private/acme/manifest.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIdentity(tt.key)
			if !errors.Is(err, ErrKeyTooShort) {
				t.Errorf("ParseIdentity(%q) error = %v, want ErrKeyTooShort", tt.key, err)
			}
		})
	}
}

func TestParseIdentityBadUploaderEncoding(t *testing.T) {
	_, err := ParseIdentity("acme/jane%zz/manifest.xlsx")
	if !errors.Is(err, ErrUploaderNotDecodable) {
		t.Errorf("error = %v, want ErrUploaderNotDecodable", err)
	}
}
