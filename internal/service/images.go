package service

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/metrics"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

// FileRemover deletes a stored file by its relative path.
type FileRemover interface {
	Remove(path string) error
}

// ImageTracker decides whether an image file may be deleted.  A file is
// only removed when no live category or product references its path.
type ImageTracker struct {
	categories repository.ImageCounter
	products   repository.ImageCounter
	files      FileRemover
	log        logrus.FieldLogger
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewImageTracker(stores *repository.Stores, files FileRemover, log logrus.FieldLogger) *ImageTracker {
	return &ImageTracker{
		categories: stores.Categories,
		products:   stores.Products,
		files:      files,
		log:        log,
		timeout:    10 * time.Second,
	}
}

// IsReferenced reports whether any category or product other than excludeID
// uses path.
func (t *ImageTracker) IsReferenced(ctx context.Context, path, excludeID string) (bool, error) {
	n, err := t.categories.CountByImage(ctx, path, excludeID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	n, err = t.products.CountByImage(ctx, path, excludeID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Release deletes path when nothing references it any more.  It must be
// called after the owning record change is persisted.  Failures are logged
// and swallowed; when the reference check fails the file is kept.
func (t *ImageTracker) Release(ctx context.Context, path, excludeID string) bool {
	if path == "" {
		return false
	}
	entry := t.log.WithField("image", path)
	used, err := t.IsReferenced(ctx, path, excludeID)
	if err != nil {
		metrics.ImageCleanups.WithLabelValues("failed").Inc()
		entry.WithError(err).Error("image reference check failed; keeping file")
		return false
	}
	if used {
		metrics.ImageCleanups.WithLabelValues("kept").Inc()
		entry.Debug("image still referenced; keeping file")
		return false
	}
	if err := t.files.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			entry.Debug("image already gone")
			return false
		}
		metrics.ImageCleanups.WithLabelValues("failed").Inc()
		entry.WithError(err).Error("error deleting image")
		return false
	}
	metrics.ImageCleanups.WithLabelValues("removed").Inc()
	entry.Info("orphaned image deleted")
	return true
}

// ReleaseAsync runs Release in the background with its own deadline so the
// response path never waits for filesystem cleanup.
func (t *ImageTracker) ReleaseAsync(path, excludeID string) {
	if path == "" {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.Release(ctx, path, excludeID)
	}()
}

// Wait blocks until every pending ReleaseAsync has finished.
func (t *ImageTracker) Wait() { t.wg.Wait() }
