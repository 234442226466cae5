package jobs

import (
	"agency_site_go/config"
	"agency_site_go/models"
	"agency_site_go/services"
	"context"
	"fmt"
	"log"
	"time"
)

// SendUnreadDigest mails the admin a summary of unread submissions and
// returns how many were listed. Nothing is sent when all are read.
func SendUnreadDigest(ctx context.Context, cfg *config.Config, repo services.SubmissionRepository, loc *time.Location) (int, error) {
	if cfg.AdminNotifyEmail == "" {
		log.Println("[CRON] ADMIN_NOTIFY_EMAIL not set, skipping digest")
		return 0, nil
	}

	subs, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	var unread []models.ContactSubmission
	for _, sub := range subs {
		if !sub.Read {
			unread = append(unread, sub)
		}
	}
	if len(unread) == 0 {
		log.Println("[CRON] No unread submissions, digest not sent")
		return 0, nil
	}

	email := services.BuildUnreadDigestEmail(unread, cfg.AdminNotifyEmail, cfg.AppURL, cfg.NotifyLang, loc)
	if err := services.SendEmail(cfg, email); err != nil {
		return 0, fmt.Errorf("failed to send digest: %w", err)
	}

	log.Printf("[CRON] Sent digest for %d unread submissions", len(unread))
	return len(unread), nil
}
