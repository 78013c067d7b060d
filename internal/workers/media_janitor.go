package workers

import (
	"context"
	"time"
	mediaPort "yatube/internal/ports/media"

	"go.uber.org/zap"
)

// ImageStore is the part of the image storage the janitor sweeps.
type ImageStore interface {
	List(ctx context.Context) ([]mediaPort.StoredImage, error)
	Delete(ctx context.Context, name string) error
}

// ImageIndex tells whether a stored image still belongs to a post.
type ImageIndex interface {
	ImageInUse(ctx context.Context, image string) (bool, error)
}

// MediaJanitor removes uploaded images no post refers to, e.g. uploads whose
// post was never saved. Files younger than Grace are left alone so an upload
// in flight is not taken away from its request.
type MediaJanitor struct {
	Images   ImageStore
	Posts    ImageIndex
	Grace    time.Duration
	Interval time.Duration
	Logger   *zap.Logger
	now      func() time.Time
}

func NewMediaJanitor(images ImageStore, posts ImageIndex, grace, interval time.Duration, logger *zap.Logger) *MediaJanitor {
	return &MediaJanitor{
		Images:   images,
		Posts:    posts,
		Grace:    grace,
		Interval: interval,
		Logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps every Interval until ctx is cancelled.
func (w *MediaJanitor) Run(ctx context.Context) {
	w.Logger.Info("Media janitor started", zap.Duration("interval", w.Interval))
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("Media janitor stopped")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.Logger.Error("Media sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep deletes orphaned images once and returns how many were removed.
func (w *MediaJanitor) Sweep(ctx context.Context) (int, error) {
	images, err := w.Images.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := w.now().Add(-w.Grace)
	removed := 0
	for _, img := range images {
		if img.ModTime.After(cutoff) {
			continue
		}
		inUse, err := w.Posts.ImageInUse(ctx, img.Name)
		if err != nil {
			return removed, err
		}
		if inUse {
			continue
		}
		if err := w.Images.Delete(ctx, img.Name); err != nil {
			w.Logger.Warn("Could not remove orphaned image", zap.String("image", img.Name), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		w.Logger.Info("Removed orphaned images", zap.Int("count", removed))
	}
	return removed, nil
}
