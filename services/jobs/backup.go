package jobs

import (
	"agency_site_go/config"
	"agency_site_go/services"
	"context"
	"fmt"
	"log"
	"time"
)

// BackupSubmissions uploads a workbook of every submission and prunes backups
// beyond cfg.BackupKeep. It returns the key written.
func BackupSubmissions(ctx context.Context, cfg *config.Config, repo services.SubmissionRepository, storage services.StorageProvider, loc *time.Location) (string, error) {
	subs, err := repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list submissions: %w", err)
	}

	buf, err := services.ExportSubmissionsXLSX(subs, cfg.NotifyLang, loc)
	if err != nil {
		return "", err
	}

	key := services.BackupKey(time.Now())
	size := int64(buf.Len())
	if _, err := storage.UploadReader(ctx, buf, key, services.ExportContentType, size); err != nil {
		return "", fmt.Errorf("failed to store backup: %w", err)
	}
	log.Printf("[CRON] Stored backup %s (%d submissions, %d bytes, %s)", key, len(subs), size, storage.Name())

	if err := pruneBackups(ctx, storage, cfg.BackupKeep); err != nil {
		log.Printf("[CRON] Backup pruning failed: %v", err)
	}
	return key, nil
}

func pruneBackups(ctx context.Context, storage services.StorageProvider, keep int) error {
	if keep <= 0 {
		return nil
	}
	objects, err := storage.List(ctx, services.BackupPrefix)
	if err != nil {
		return err
	}
	for i := 0; i < len(objects)-keep; i++ {
		if err := storage.Delete(ctx, objects[i].Key); err != nil {
			return err
		}
		log.Printf("[CRON] Removed old backup %s", objects[i].Key)
	}
	return nil
}
