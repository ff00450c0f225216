// Package jobs holds scheduled background work. The only job today is
// the retention sweep: records soft-deleted longer than the retention
// window are removed for good, along with their files on disk.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/storage"
)

// Cleaner hard-deletes users and images whose soft-delete timestamp is
// older than RetainDays.
type Cleaner struct {
	Users      *repository.UserRepo
	Images     *repository.ImageRepo
	Store      *storage.Store
	RetainDays int
}

// Run performs one sweep. Failures are logged and skipped; the next
// scheduled run picks up whatever was left behind.
func (cl *Cleaner) Run(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -cl.RetainDays)

	n, err := cl.Users.HardDeleteBefore(ctx, cutoff)
	if err != nil {
		log.Printf("sweep: user purge failed: %v", err)
	} else if n > 0 {
		log.Printf("sweep: purged %d users deleted before %s", n, cutoff.Format(time.DateOnly))
	}

	images, err := cl.Images.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("sweep: image listing failed: %v", err)
		return
	}
	if len(images) == 0 {
		return
	}

	// Remove files first. An image whose file failed to delete keeps its
	// row so the next sweep retries it.
	ids := make([]uint64, 0, len(images))
	for _, img := range images {
		if err := cl.Store.Delete(img.Link); err != nil {
			log.Printf("sweep: file delete failed for image %d (%s): %v", img.ID, img.Link, err)
			continue
		}
		ids = append(ids, img.ID)
	}
	if n, err := cl.Images.HardDelete(ctx, ids); err != nil {
		log.Printf("sweep: image purge failed: %v", err)
	} else if n > 0 {
		log.Printf("sweep: purged %d images", n)
	}
}

// Schedule registers the sweep on a cron scheduler and starts it. The
// returned scheduler should be stopped on shutdown.
func Schedule(spec string, cl *Cleaner) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		cl.Run(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
