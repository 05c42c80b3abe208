package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"pingcrm-backend/internal/filestore"
)

// ErrNotImage is returned for uploads that are not a supported image.
var ErrNotImage = errors.New("The photo must be an image.") //nolint:revive,stylecheck

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Photos stores user photos.
type Photos struct {
	files filestore.Store
}

// NewPhotos returns Photos saving into files.
func NewPhotos(files filestore.Store) *Photos {
	return &Photos{files: files}
}

// Sniff returns the content type of an upload, or ErrNotImage.
func (p *Photos) Sniff(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	ct := http.DetectContentType(head[:n])
	if _, ok := photoExtensions[ct]; !ok {
		return "", ErrNotImage
	}
	return ct, nil
}

// Store saves the upload as users/<account>/<uuid><ext> and returns its
// path.
func (p *Photos) Store(ctx context.Context, accountID int64, fh *multipart.FileHeader) (string, error) {
	ct, err := p.Sniff(fh)
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck

	name := "users/" + strconv.FormatInt(accountID, 10) + "/" + uuid.NewString() + photoExtensions[ct]
	if err := p.files.Put(ctx, name, f); err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return name, nil
}

// Remove deletes a stored photo. Empty paths are ignored and failures only
// logged.
func (p *Photos) Remove(ctx context.Context, name string, logger *log.Logger) {
	if name == "" {
		return
	}
	if err := p.files.Delete(ctx, name); err != nil {
		logger.Warn("delete photo", "path", name, "err", err)
	}
}
