package services

import (
	"agency_site_go/models"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSubmissions() []models.ContactSubmission {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return []models.ContactSubmission{
		{ID: "c", Name: "Cara", Email: "cara@x.com", Message: "3", Timestamp: base.Add(2 * time.Hour)},
		{ID: "b", Name: "Bob", Email: "bob@x.com", Message: "2", Timestamp: base.Add(time.Hour), Read: true},
		{ID: "a", Name: "Ann", Email: "ann@x.com", Message: "1", Timestamp: base},
	}
}

func activeStore() *SessionStore {
	store := NewSessionStore(&mockIdentityProvider{ready: true})
	_, _ = store.SignIn(context.Background(), "hello@codebear.at", "pw", ClientMeta{})
	return store
}

func loadedDashboard(t *testing.T, repo *mockSubmissionRepository) *Dashboard {
	t.Helper()
	if repo.listFunc == nil {
		repo.listFunc = func(ctx context.Context) ([]models.ContactSubmission, error) {
			return sampleSubmissions(), nil
		}
	}
	d := NewDashboard(repo, activeStore())
	require.NoError(t, d.LoadData(context.Background()))
	return d
}

func TestGateFor(t *testing.T) {
	assert.Equal(t, GateLoading, GateFor(SessionSnapshot{State: SessionLoading}))
	assert.Equal(t, GateRedirect, GateFor(SessionSnapshot{State: SessionNone}))
	assert.Equal(t, GateRedirect, GateFor(SessionSnapshot{State: SessionActive}))
	assert.Equal(t, GateAllow, GateFor(SessionSnapshot{State: SessionActive, Session: testSession("t", "a@b.co")}))
}

func TestDashboard_GateFollowsStore(t *testing.T) {
	provider := &mockIdentityProvider{ready: false}
	store := NewSessionStore(provider)
	d := NewDashboard(&mockSubmissionRepository{}, store)

	store.Restore(context.Background(), "")
	assert.Equal(t, GateLoading, d.Gate(), "no redirect while loading")

	provider.ready = true
	store.Restore(context.Background(), "")
	assert.Equal(t, GateRedirect, d.Gate())

	_, err := store.SignIn(context.Background(), "hello@codebear.at", "pw", ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, GateAllow, d.Gate())
}

func TestDashboard_LoadData(t *testing.T) {
	fail := false
	repo := &mockSubmissionRepository{
		listFunc: func(ctx context.Context) ([]models.ContactSubmission, error) {
			if fail {
				return nil, newStoreError("list", ErrUnavailable, errors.New("connection refused"))
			}
			return sampleSubmissions(), nil
		},
	}
	d := loadedDashboard(t, repo)
	assert.Len(t, d.Submissions(), 3)
	assert.NoError(t, d.Error())

	fail = true
	err := d.LoadData(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, sampleSubmissions(), d.Submissions(), "previous list is kept")
	require.Error(t, d.Error())
	assert.Contains(t, d.Error().Error(), "connection refused")

	fail = false
	require.NoError(t, d.LoadData(context.Background()))
	assert.NoError(t, d.Error())
}

func TestDashboard_LoadDataLastResponseWins(t *testing.T) {
	slowRelease := make(chan struct{})
	calls := 0
	var mu sync.Mutex
	repo := &mockSubmissionRepository{
		listFunc: func(ctx context.Context) ([]models.ContactSubmission, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				<-slowRelease
				return sampleSubmissions()[:1], nil
			}
			return sampleSubmissions(), nil
		},
	}
	d := NewDashboard(repo, activeStore())

	done := make(chan struct{})
	go func() {
		_ = d.LoadData(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, d.LoadData(context.Background()))
	assert.Len(t, d.Submissions(), 3)

	close(slowRelease)
	<-done
	assert.Len(t, d.Submissions(), 1)
}

func TestDashboard_MarkReadSuccess(t *testing.T) {
	d := loadedDashboard(t, &mockSubmissionRepository{})
	before := d.Submissions()

	require.NoError(t, d.MarkRead(context.Background(), "c"))

	after := d.Submissions()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID, "order unchanged")
		if before[i].ID == "c" {
			assert.False(t, before[i].Read)
			assert.True(t, after[i].Read)
		} else {
			assert.Equal(t, before[i], after[i])
		}
	}
	assert.Equal(t, SubmissionCounts{Total: 3, Read: 2, Unread: 1}, d.Counts())
}

func TestDashboard_MarkReadFailureLeavesList(t *testing.T) {
	repo := &mockSubmissionRepository{
		markReadFunc: func(ctx context.Context, id string) error {
			return newStoreError("mark-read", ErrNotFound, nil)
		},
	}
	d := loadedDashboard(t, repo)
	before := d.Submissions()

	err := d.MarkRead(context.Background(), "c")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, d.Submissions())

	notice := d.Notice()
	require.NotNil(t, notice)
	assert.Equal(t, NoticeMarkReadFailed, notice.Kind)
	assert.Equal(t, "c", notice.ID)
}

func TestDashboard_DeleteOne(t *testing.T) {
	var deleted []string
	repo := &mockSubmissionRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	d := loadedDashboard(t, repo)

	err := d.DeleteOne(context.Background(), "b", func() bool { return false })
	assert.ErrorIs(t, err, ErrDeleteNotConfirmed)
	assert.Empty(t, deleted)
	assert.Len(t, d.Submissions(), 3)

	assert.ErrorIs(t, d.DeleteOne(context.Background(), "b", nil), ErrDeleteNotConfirmed)

	require.NoError(t, d.DeleteOne(context.Background(), "b", func() bool { return true }))
	assert.Equal(t, []string{"b"}, deleted)

	remaining := d.Submissions()
	require.Len(t, remaining, 2)
	assert.Equal(t, "c", remaining[0].ID)
	assert.Equal(t, "a", remaining[1].ID)
	assert.Equal(t, SubmissionCounts{Total: 2, Read: 0, Unread: 2}, d.Counts())
}

func TestDashboard_DeleteFailureLeavesList(t *testing.T) {
	repo := &mockSubmissionRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return newStoreError("delete", ErrPermissionDenied, errors.New("403"))
		},
	}
	d := loadedDashboard(t, repo)
	before := d.Submissions()

	err := d.DeleteOne(context.Background(), "a", func() bool { return true })
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, before, d.Submissions())
	require.NotNil(t, d.Notice())
	assert.Equal(t, NoticeDeleteFailed, d.Notice().Kind)
}

func TestDashboard_UnreadCountMatchesList(t *testing.T) {
	d := loadedDashboard(t, &mockSubmissionRepository{})

	check := func() {
		unread := 0
		for _, s := range d.Submissions() {
			if !s.Read {
				unread++
			}
		}
		assert.Equal(t, unread, d.Counts().Unread)
		assert.Equal(t, len(d.Submissions()), d.Counts().Total)
	}

	check()
	require.NoError(t, d.MarkRead(context.Background(), "a"))
	check()
	require.NoError(t, d.DeleteOne(context.Background(), "c", func() bool { return true }))
	check()
	require.NoError(t, d.LoadData(context.Background()))
	check()
}

func TestDashboard_SignOutAndRedirect(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := activeStore()
		d := NewDashboard(&mockSubmissionRepository{}, store)
		assert.Equal(t, LoginPath, d.SignOutAndRedirect(context.Background()))
		assert.Equal(t, SessionNone, store.Current().State)
	})

	t.Run("failure still redirects", func(t *testing.T) {
		provider := &mockIdentityProvider{ready: true, signOutErr: errors.New("offline")}
		store := NewSessionStore(provider)
		_, err := store.SignIn(context.Background(), "hello@codebear.at", "pw", ClientMeta{})
		require.NoError(t, err)

		d := NewDashboard(&mockSubmissionRepository{}, store)
		assert.Equal(t, LoginPath, d.SignOutAndRedirect(context.Background()))
	})
}
