package partials

import (
	"agency_site_go/services"
	"errors"
)

// describeLoadError turns a load failure into the short cause shown to admins.
// Backend details stay in the server log.
func describeLoadError(err error) string {
	switch {
	case errors.Is(err, services.ErrNotInitialized):
		return "backend not initialized"
	case errors.Is(err, services.ErrUnavailable):
		return "backend unavailable"
	case errors.Is(err, services.ErrPermissionDenied):
		return "permission denied"
	}
	return "unexpected error"
}
