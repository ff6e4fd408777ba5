// Package imaging stages at most one locally selected image per logical
// slot until the submission pipeline uploads it. The staged reference is
// independent from any image URL already persisted on the record.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// Source selects where a picked image comes from.
type Source string

const (
	SourceCamera  Source = "camera"
	SourceGallery Source = "gallery"
)

// Staged is one locally selected image awaiting upload.
type Staged struct {
	ID       uuid.UUID
	Path     string
	FileName string
}

// Picker is the platform image selection surface. Pick returns
// errs.ErrCanceled when the user dismisses it without choosing.
type Picker interface {
	Pick(ctx context.Context, source Source) (path string, err error)
}

// UploadAPI is the slice of the backend staging needs.
type UploadAPI interface {
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Staging holds the pending image for one slot.
type Staging struct {
	api    UploadAPI
	staged *Staged
}

// New constructs an empty staging slot.
func New(api UploadAPI) *Staging {
	return &Staging{api: api}
}

// Pick runs the picker and, on success, replaces any previously staged
// image. User cancellation and picker errors both leave the slot unchanged.
func (s *Staging) Pick(ctx context.Context, picker Picker, source Source) error {
	path, err := picker.Pick(ctx, source)
	if errors.Is(err, errs.ErrCanceled) {
		return nil
	}
	if err != nil {
		return err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	s.staged = &Staged{ID: id, Path: path, FileName: filepath.Base(path)}
	return nil
}

// Staged returns a copy of the pending image, or nil when the slot is empty.
func (s *Staging) Staged() *Staged {
	if s.staged == nil {
		return nil
	}
	cp := *s.staged
	return &cp
}

// HasStaged reports whether an image is pending upload.
func (s *Staging) HasStaged() bool { return s.staged != nil }

// Clear discards the staged image. When d is an edit draft, the persisted
// image URL is cleared too: once committed, explicit removal is
// indistinguishable from never having had an image.
func (s *Staging) Clear(d *model.ProductDraft) {
	s.staged = nil
	if d != nil {
		d.ImageURL = ""
	}
}

// Upload sends the staged image and returns its server-assigned URL. It
// is invoked only by the submission pipeline; with nothing staged it is a
// no-op returning "".
func (s *Staging) Upload(ctx context.Context) (string, error) {
	if s.staged == nil {
		return "", nil
	}
	f, err := os.Open(s.staged.Path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", errs.ErrUpload, s.staged.FileName, err)
	}
	defer f.Close()
	return s.api.UploadImage(ctx, s.staged.FileName, f)
}

// validImageExts mirrors what the backend accepts for upload.
var validImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// FilePicker picks an image from a local path; it stands in for the
// camera/gallery surface on platforms without one.
type FilePicker struct {
	Path string
}

// Pick validates the configured path. An empty path is a cancellation.
func (p FilePicker) Pick(_ context.Context, _ Source) (string, error) {
	if strings.TrimSpace(p.Path) == "" {
		return "", errs.ErrCanceled
	}
	if !validImageExts[strings.ToLower(filepath.Ext(p.Path))] {
		return "", fmt.Errorf("%w: not an image file: %s", errs.ErrValidation, filepath.Base(p.Path))
	}
	if _, err := os.Stat(p.Path); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return p.Path, nil
}
