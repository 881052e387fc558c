package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// DiskStore writes uploads to a local directory served under /uploads.
type DiskStore struct {
	dir     string
	baseURL string
	log     *zerolog.Logger
}

// NewDiskStore creates the upload directory if needed. baseURL is the public
// prefix written into returned references (may be empty for relative URLs).
func NewDiskStore(dir, baseURL string, logger *zerolog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     logger,
	}, nil
}

// Save stores the file under a timestamp-prefixed name and returns its URL.
// Files with no extension get one from content sniffing so the static file
// server can attach a sensible content type.
func (d *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(filename))
	if filepath.Ext(name) == "" {
		if mtype := mimetype.Detect(data); mtype.Extension() != "" {
			name += mtype.Extension()
		}
	}

	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	d.log.Debug().Str("file", name).Int("bytes", len(data)).Msg("upload stored")
	return d.baseURL + "/uploads/" + name, nil
}

// sanitizeFilename strips any path components and characters that do not
// belong in a URL segment.
func sanitizeFilename(filename string) string {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
