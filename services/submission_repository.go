package services

import (
	"agency_site_go/db"
	"agency_site_go/models"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionRepository stores contact-form submissions.
// All methods fail with *StoreError.
type SubmissionRepository interface {
	Create(ctx context.Context, fields models.ContactFields) (string, error)
	List(ctx context.Context) ([]models.ContactSubmission, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// GormSubmissionRepository is the SQL-backed SubmissionRepository
type GormSubmissionRepository struct {
	handle *db.Handle
	now    func() time.Time
}

// NewSubmissionRepository creates a repository over the given backend handle
func NewSubmissionRepository(handle *db.Handle) *GormSubmissionRepository {
	return &GormSubmissionRepository{handle: handle, now: time.Now}
}

func (r *GormSubmissionRepository) conn(ctx context.Context, op string) (*gorm.DB, error) {
	conn, err := r.handle.Conn()
	if err != nil {
		return nil, newStoreError(op, ErrNotInitialized, err)
	}
	return conn.WithContext(ctx), nil
}

// Create stores a new submission. The timestamp and read flag are always set
// here; callers cannot supply them.
func (r *GormSubmissionRepository) Create(ctx context.Context, fields models.ContactFields) (string, error) {
	conn, err := r.conn(ctx, "create")
	if err != nil {
		return "", err
	}

	submission := models.ContactSubmission{
		ID:        uuid.New().String(),
		Name:      fields.Name,
		Email:     fields.Email,
		Company:   fields.Company,
		Phone:     fields.Phone,
		Service:   fields.Service,
		Message:   fields.Message,
		Timestamp: r.now().UTC(),
		Read:      false,
	}

	if err := conn.Create(&submission).Error; err != nil {
		return "", classifyStoreError("create", err)
	}

	return submission.ID, nil
}

// submissionRow is the raw shape read back from the table. Columns may be
// NULL when rows were written by other tools.
type submissionRow struct {
	ID        string
	Name      sql.NullString
	Email     sql.NullString
	Company   sql.NullString
	Phone     sql.NullString
	Service   sql.NullString
	Message   sql.NullString
	Timestamp looseTime
	Read      sql.NullBool
}

// List returns every submission, newest first
func (r *GormSubmissionRepository) List(ctx context.Context) ([]models.ContactSubmission, error) {
	conn, err := r.conn(ctx, "list")
	if err != nil {
		return nil, err
	}

	var rows []submissionRow
	err = conn.Table(models.ContactSubmission{}.TableName()).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Find(&rows).Error
	if err != nil {
		return nil, classifyStoreError("list", err)
	}

	now := r.now().UTC()
	submissions := make([]models.ContactSubmission, 0, len(rows))
	for _, row := range rows {
		submissions = append(submissions, fillDefaults(row, now))
	}

	// Rows with a recovered timestamp may be out of place
	sort.SliceStable(submissions, func(i, j int) bool {
		return submissions[i].Timestamp.After(submissions[j].Timestamp)
	})

	return submissions, nil
}

// fillDefaults turns a raw row into a submission with no missing fields
func fillDefaults(row submissionRow, now time.Time) models.ContactSubmission {
	ts := row.Timestamp.Time
	if !row.Timestamp.Valid {
		log.Printf("[WARNING] Submission %s has no usable timestamp, using current time", row.ID)
		ts = now
	}

	return models.ContactSubmission{
		ID:        row.ID,
		Name:      row.Name.String,
		Email:     row.Email.String,
		Company:   row.Company.String,
		Phone:     row.Phone.String,
		Service:   row.Service.String,
		Message:   row.Message.String,
		Timestamp: ts,
		Read:      row.Read.Valid && row.Read.Bool,
	}
}

// MarkRead sets the read flag of one submission. There is no way back.
func (r *GormSubmissionRepository) MarkRead(ctx context.Context, id string) error {
	conn, err := r.conn(ctx, "mark-read")
	if err != nil {
		return err
	}

	result := conn.Model(&models.ContactSubmission{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return classifyStoreError("mark-read", result.Error)
	}
	if result.RowsAffected == 0 {
		return newStoreError("mark-read", ErrNotFound, nil)
	}
	return nil
}

// Delete permanently removes one submission
func (r *GormSubmissionRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.conn(ctx, "delete")
	if err != nil {
		return err
	}

	result := conn.Where("id = ?", id).Delete(&models.ContactSubmission{})
	if result.Error != nil {
		return classifyStoreError("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return newStoreError("delete", ErrNotFound, nil)
	}
	return nil
}

// classifyStoreError maps a driver error onto a StoreError kind
func classifyStoreError(op string, err error) error {
	switch {
	case errors.Is(err, db.ErrNotInitialized):
		return newStoreError(op, ErrNotInitialized, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newStoreError(op, ErrNotFound, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return newStoreError(op, ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return newStoreError(op, ErrUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"unauthorized", "forbidden", "permission denied", "readonly", "read-only", "401", "403"} {
		if strings.Contains(msg, marker) {
			return newStoreError(op, ErrPermissionDenied, err)
		}
	}
	for _, marker := range []string{"connection refused", "no such host", "unable to open database", "database is locked", "timeout", "eof"} {
		if strings.Contains(msg, marker) {
			return newStoreError(op, ErrUnavailable, err)
		}
	}

	return newStoreError(op, ErrBackend, err)
}

// looseTime scans a timestamp column that may hold NULL, a driver time value,
// text in one of several layouts, or unix seconds. Anything else is invalid.
type looseTime struct {
	Time  time.Time
	Valid bool
}

var looseTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scan implements sql.Scanner
func (t *looseTime) Scan(value interface{}) error {
	t.Time, t.Valid = time.Time{}, false

	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		t.Time = v
	case int64:
		if v > 0 {
			t.Time = time.Unix(v, 0).UTC()
		}
	case float64:
		if v > 0 {
			t.Time = time.Unix(int64(v), 0).UTC()
		}
	case []byte:
		t.Time = parseLooseTime(string(v))
	case string:
		t.Time = parseLooseTime(v)
	}

	t.Valid = !t.Time.IsZero()
	return nil
}

// Value implements driver.Valuer
func (t looseTime) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time, nil
}

func parseLooseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range looseTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
