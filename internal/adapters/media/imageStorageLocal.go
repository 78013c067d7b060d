package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"yatube/internal/config"
	mediaPort "yatube/internal/ports/media"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const uploadDir = "posts"

// ImageStorageLocal keeps uploaded images under Root/posts.
type ImageStorageLocal struct {
	Root string
}

func NewImageStorageLocal(root string) *ImageStorageLocal {
	return &ImageStorageLocal{Root: root}
}

// Save sniffs the upload and stores it only if it is an image. The returned
// name is relative to Root, e.g. "posts/<uuid>.gif".
func (s *ImageStorageLocal) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		config.Logger.Info("Rejected upload", zap.String("filename", fh.Filename), zap.String("mime", mtype.String()))
		return "", mediaPort.ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	dir := filepath.Join(s.Root, uploadDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name := uuid.Must(uuid.NewV4()).String() + mtype.Extension()
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return uploadDir + "/" + name, nil
}

func (s *ImageStorageLocal) Delete(ctx context.Context, name string) error {
	clean := filepath.Clean("/" + name)
	if err := os.Remove(filepath.Join(s.Root, clean)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns every stored image. An empty storage is not an error.
func (s *ImageStorageLocal) List(ctx context.Context) ([]mediaPort.StoredImage, error) {
	entries, err := os.ReadDir(filepath.Join(s.Root, uploadDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	images := make([]mediaPort.StoredImage, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		images = append(images, mediaPort.StoredImage{Name: uploadDir + "/" + e.Name(), ModTime: info.ModTime()})
	}
	return images, nil
}
