package media

import (
	"context"
	"errors"
	"mime/multipart"
	"time"
)

var ErrNotImage = errors.New("upload a valid image")

// ImageStorage keeps uploaded post images and returns their relative names.
type ImageStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, name string) error
}

// StoredImage is a file found in the image storage.
type StoredImage struct {
	Name    string
	ModTime time.Time
}
