package jobs

import (
	"agency_site_go/services"
	"context"
	"log"
)

// CleanupSessions removes expired admin sessions
func CleanupSessions(ctx context.Context, identity *services.DBIdentityProvider) (int64, error) {
	if identity == nil || !identity.Ready() {
		return 0, nil
	}
	n, err := identity.CleanupExpiredSessions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[CRON] Removed %d expired sessions", n)
	}
	return n, nil
}
