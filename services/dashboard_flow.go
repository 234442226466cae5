package services

import (
	"agency_site_go/models"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// LoginPath is where unauthenticated admins are sent
const LoginPath = "/admin/login"

// Gate is the dashboard's decision for a session snapshot
type Gate int

const (
	// GateLoading shows a loading indicator and must not redirect
	GateLoading Gate = iota
	GateRedirect
	GateAllow
)

// GateFor maps a session snapshot to a gate decision
func GateFor(snapshot SessionSnapshot) Gate {
	switch snapshot.State {
	case SessionActive:
		if snapshot.Session != nil {
			return GateAllow
		}
		return GateRedirect
	case SessionNone:
		return GateRedirect
	}
	return GateLoading
}

// ErrDeleteNotConfirmed is returned when the admin did not confirm a delete
var ErrDeleteNotConfirmed = errors.New("delete not confirmed")

// NoticeKind tells which per-item action failed
type NoticeKind string

const (
	NoticeMarkReadFailed NoticeKind = "mark_read_failed"
	NoticeDeleteFailed   NoticeKind = "delete_failed"
)

// Notice is a failure from a per-item action
type Notice struct {
	Kind NoticeKind
	ID   string
	Err  error
}

// SubmissionCounts are derived from the loaded list
type SubmissionCounts struct {
	Total  int
	Read   int
	Unread int
}

// Dashboard holds the admin's view of the submissions
type Dashboard struct {
	mu       sync.Mutex
	repo     SubmissionRepository
	sessions *SessionStore

	submissions []models.ContactSubmission
	loadErr     error
	notice      *Notice
}

// NewDashboard creates an empty dashboard
func NewDashboard(repo SubmissionRepository, sessions *SessionStore) *Dashboard {
	return &Dashboard{repo: repo, sessions: sessions}
}

// Gate reports whether the dashboard may be shown
func (d *Dashboard) Gate() Gate {
	return GateFor(d.sessions.Current())
}

// LoadData replaces the list with a fresh one. On failure the previous list
// stays and the error is kept for display. Overlapping calls are not
// deduplicated; the last one to finish wins.
func (d *Dashboard) LoadData(ctx context.Context) error {
	submissions, err := d.repo.List(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.loadErr = fmt.Errorf("failed to load submissions: %w", err)
		return d.loadErr
	}
	d.submissions = submissions
	d.loadErr = nil
	return nil
}

// MarkRead flips the read flag locally only after the repository succeeded
func (d *Dashboard) MarkRead(ctx context.Context, id string) error {
	if err := d.repo.MarkRead(ctx, id); err != nil {
		d.setNotice(&Notice{Kind: NoticeMarkReadFailed, ID: id, Err: err})
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.submissions {
		if d.submissions[i].ID == id {
			d.submissions[i].Read = true
			break
		}
	}
	d.notice = nil
	return nil
}

// DeleteOne removes a submission after confirm returns true. The entry leaves
// the local list only after the repository succeeded.
func (d *Dashboard) DeleteOne(ctx context.Context, id string, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrDeleteNotConfirmed
	}

	if err := d.repo.Delete(ctx, id); err != nil {
		d.setNotice(&Notice{Kind: NoticeDeleteFailed, ID: id, Err: err})
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.submissions {
		if d.submissions[i].ID == id {
			d.submissions = append(d.submissions[:i:i], d.submissions[i+1:]...)
			break
		}
	}
	d.notice = nil
	return nil
}

func (d *Dashboard) setNotice(n *Notice) {
	log.Printf("[WARNING] Dashboard %s for %s: %v", n.Kind, n.ID, n.Err)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notice = n
}

// Submissions returns a copy of the current list
func (d *Dashboard) Submissions() []models.ContactSubmission {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.ContactSubmission, len(d.submissions))
	copy(out, d.submissions)
	return out
}

// Find returns the loaded submission with id
func (d *Dashboard) Find(id string) (models.ContactSubmission, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.submissions {
		if s.ID == id {
			return s, true
		}
	}
	return models.ContactSubmission{}, false
}

// Counts computes total, read and unread from the current list
func (d *Dashboard) Counts() SubmissionCounts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return CountSubmissions(d.submissions)
}

// CountSubmissions derives the counts for a list
func CountSubmissions(submissions []models.ContactSubmission) SubmissionCounts {
	counts := SubmissionCounts{Total: len(submissions)}
	for _, s := range submissions {
		if s.Read {
			counts.Read++
		}
	}
	counts.Unread = counts.Total - counts.Read
	return counts
}

// Error returns the last load failure, if any
func (d *Dashboard) Error() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadErr
}

// Notice returns the last per-item failure, if any
func (d *Dashboard) Notice() *Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.notice
}

// SignOutAndRedirect signs out best-effort and always returns LoginPath
func (d *Dashboard) SignOutAndRedirect(ctx context.Context) string {
	if err := d.sessions.SignOut(ctx); err != nil {
		log.Printf("[WARNING] Sign-out failed: %v", err)
	}
	return LoginPath
}
