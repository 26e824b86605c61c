package ingest

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"weokto/course-app/internal/domain"
)

// Validation failures are terminal for the selection attempt: the caller
// must select a different file, there is nothing to retry.
var (
	ErrSizeExceeded      = errors.New("size exceeded")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// SelectedAsset represents a locally chosen file before upload. It is
// consumed by the upload transport and not retained afterwards.
type SelectedAsset struct {
	FileName    string
	Size        int64
	ContentType string
	Body        io.ReadCloser
}

// DefaultTitle derives a title by stripping the last dot-delimited
// extension from the filename.
func (a *SelectedAsset) DefaultTitle() string {
	ext := filepath.Ext(a.FileName)
	return strings.TrimSuffix(a.FileName, ext)
}

// Validate checks the declared size and MIME type against the accepted
// bounds. Pure check: no network call is made, regardless of outcome.
func (a *SelectedAsset) Validate() error {
	if a.Size > domain.MaxVideoBytes {
		return ErrSizeExceeded
	}
	if !domain.IsAllowedVideoContentType(a.ContentType) {
		return ErrUnsupportedFormat
	}
	return nil
}

// Close releases the underlying file handle.
func (a *SelectedAsset) Close() error {
	if a.Body == nil {
		return nil
	}
	return a.Body.Close()
}

// SelectFile opens a local file and builds a SelectedAsset from it. The
// MIME type is derived from the file extension, matching what a browser
// would declare for the same file.
func SelectFile(path string) (*SelectedAsset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("reading file info: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	// Strip any parameters ("video/webm; charset=...") down to the bare type.
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	return &SelectedAsset{
		FileName:    filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentType,
		Body:        file,
	}, nil
}
