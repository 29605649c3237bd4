package storage

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/globomantics/cms/pkg/id"
)

// Storage stores opaque objects by key.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns ErrNotFound for unknown keys. The caller closes Body.
	Open(ctx context.Context, key string) (*Object, error)
	// Delete is a no-op for unknown keys.
	Delete(ctx context.Context, key string) error
}

// Object is a stored file being read.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Config selects and configures the backend. S3 is used when Bucket is set,
// otherwise files go to Dir.
type Config struct {
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Dir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`
}

// UsesS3 reports whether an S3 bucket is configured.
func (c Config) UsesS3() bool { return c.Bucket != "" }

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// NewKey builds a unique key "{prefix}/{ulid}{ext}" for a file of the given
// content type.
func NewKey(prefix, contentType string) string {
	ext, ok := extensions[contentType]
	if !ok {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = ".bin"
		}
	}
	name := strings.ToLower(id.NewULID()) + ext
	if prefix = strings.Trim(prefix, "/"); prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ValidKey rejects empty keys and keys that could escape a prefix.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// DetectContentType sniffs the first bytes of r and rewinds it.
func DetectContentType(r io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	ct, _, _ := strings.Cut(http.DetectContentType(head[:n]), ";")
	return ct, nil
}

func contentTypeForKey(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
