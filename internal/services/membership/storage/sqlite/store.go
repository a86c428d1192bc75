// Package sqlite provides a SQLite-backed membership storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/section"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	sqlitemigrate "github.com/louisbranch/memberdesk/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/memberdesk/internal/platform/timeouts"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists membership state in SQLite.
type Store struct {
	sqlDB *sql.DB
	q     queryer
	tx    *sql.Tx
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite membership store and applies embedded migrations.
//
// Transactions begin with BEGIN IMMEDIATE so each read-check-write sequence
// holds the write lock from its first read.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		cleanPath,
		timeouts.StoreBusy.Milliseconds(),
	)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, q: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil || s.tx != nil {
		return nil
	}
	return s.sqlDB.Close()
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// InTx runs fn inside one immediate transaction. Nested calls reuse the
// enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("transaction func is required")
	}
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin membership transaction: %w", err)
	}
	txStore := &Store{sqlDB: s.sqlDB, q: tx, tx: tx, now: s.now}
	if err := fn(txStore); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback membership transaction: %v", err, rollbackErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit membership transaction: %w", err)
	}
	return nil
}

// writeTx runs a multi-statement write on the current transaction or a new one.
func (s *Store) writeTx(ctx context.Context, fn func(q queryer) error) error {
	return s.InTx(ctx, func(txStore storage.Store) error {
		return fn(txStore.(*Store).q)
	})
}

// GetUser loads one user.
func (s *Store) GetUser(ctx context.Context, userID string) (access.User, error) {
	if err := s.ready(ctx); err != nil {
		return access.User{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return access.User{}, fmt.Errorf("user id is required")
	}
	row := s.q.QueryRowContext(ctx, `
SELECT id, first_name, last_name, email, status, requested_status
FROM users
WHERE id = ?
`, userID)
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return access.User{}, storage.ErrNotFound
		}
		return access.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user in registration order.
func (s *Store) ListUsers(ctx context.Context) ([]access.User, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, `
SELECT id, first_name, last_name, email, status, requested_status
FROM users
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []access.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// PutUser inserts one new user.
func (s *Store) PutUser(ctx context.Context, user access.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if err := user.Status.Validate(); err != nil {
		return err
	}
	now := toMillis(s.now())
	_, err := s.q.ExecContext(ctx, `
INSERT INTO users (id, first_name, last_name, email, status, requested_status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, user.ID, strings.TrimSpace(user.FirstName), strings.TrimSpace(user.LastName), strings.TrimSpace(user.Email),
		string(user.Status), string(user.RequestedStatus), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// SetMembershipStatus stores a user's status and requested status.
func (s *Store) SetMembershipStatus(ctx context.Context, userID string, next status.Status, requested status.Status) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if err := next.Validate(); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `
UPDATE users
SET status = ?, requested_status = ?, updated_at = ?
WHERE id = ?
`, string(next), string(requested), toMillis(s.now()), userID)
	if err != nil {
		return fmt.Errorf("set membership status: %w", err)
	}
	return requireAffected(result, "set membership status")
}

// IsAdmin reports whether the user holds the admin claim.
func (s *Store) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found int
	err := s.q.QueryRowContext(ctx, `SELECT 1 FROM admin_claims WHERE user_id = ?`, strings.TrimSpace(userID)).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check admin claim: %w", err)
	}
	return true, nil
}

// CountAdmins returns the number of admin claims.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM admin_claims`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// PutAdminClaim grants the admin claim.
func (s *Store) PutAdminClaim(ctx context.Context, userID string, grantedBy string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	_, err := s.q.ExecContext(ctx, `
INSERT INTO admin_claims (user_id, granted_by, granted_at)
VALUES (?, ?, ?)
`, userID, strings.TrimSpace(grantedBy), toMillis(s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put admin claim: %w", err)
	}
	return nil
}

// DeleteAdminClaim revokes the admin claim.
func (s *Store) DeleteAdminClaim(ctx context.Context, userID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `DELETE FROM admin_claims WHERE user_id = ?`, strings.TrimSpace(userID))
	if err != nil {
		return fmt.Errorf("delete admin claim: %w", err)
	}
	return requireAffected(result, "delete admin claim")
}

// GetGroup loads one group with its statuses and explicit members.
func (s *Store) GetGroup(ctx context.Context, groupID string) (access.Group, error) {
	if err := s.ready(ctx); err != nil {
		return access.Group{}, err
	}
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return access.Group{}, fmt.Errorf("group id is required")
	}
	var group access.Group
	var subscribable int
	err := s.q.QueryRowContext(ctx, `
SELECT id, name, description, subscribable
FROM access_groups
WHERE id = ?
`, groupID).Scan(&group.ID, &group.Name, &group.Description, &subscribable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return access.Group{}, storage.ErrNotFound
		}
		return access.Group{}, fmt.Errorf("get group: %w", err)
	}
	group.Subscribable = subscribable == 1
	if err := s.loadGroupRelations(ctx, &group); err != nil {
		return access.Group{}, err
	}
	return group, nil
}

// ListGroups returns every group ordered by name.
func (s *Store) ListGroups(ctx context.Context) ([]access.Group, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, `
SELECT id, name, description, subscribable
FROM access_groups
ORDER BY name ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	var groups []access.Group
	for rows.Next() {
		var group access.Group
		var subscribable int
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &subscribable); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		group.Subscribable = subscribable == 1
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate group rows: %w", err)
	}
	_ = rows.Close()

	for i := range groups {
		if err := s.loadGroupRelations(ctx, &groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *Store) loadGroupRelations(ctx context.Context, group *access.Group) error {
	statusRows, err := s.q.QueryContext(ctx, `
SELECT status FROM access_group_statuses WHERE group_id = ? ORDER BY rowid ASC
`, group.ID)
	if err != nil {
		return fmt.Errorf("list group statuses: %w", err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var value string
		if err := statusRows.Scan(&value); err != nil {
			return fmt.Errorf("scan group status: %w", err)
		}
		group.Statuses = append(group.Statuses, status.Status(value))
	}
	if err := statusRows.Err(); err != nil {
		return fmt.Errorf("iterate group statuses: %w", err)
	}

	memberRows, err := s.q.QueryContext(ctx, `
SELECT user_id FROM access_group_members WHERE group_id = ? ORDER BY added_at ASC, rowid ASC
`, group.ID)
	if err != nil {
		return fmt.Errorf("list group members: %w", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var userID string
		if err := memberRows.Scan(&userID); err != nil {
			return fmt.Errorf("scan group member: %w", err)
		}
		group.Members = append(group.Members, userID)
	}
	if err := memberRows.Err(); err != nil {
		return fmt.Errorf("iterate group members: %w", err)
	}
	return nil
}

// PutGroup upserts a group and replaces its statuses and explicit members.
func (s *Store) PutGroup(ctx context.Context, group access.Group) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	group.ID = strings.TrimSpace(group.ID)
	if group.ID == "" {
		return fmt.Errorf("group id is required")
	}
	for _, value := range group.Statuses {
		if err := value.Validate(); err != nil {
			return err
		}
	}
	subscribable := 0
	if group.Subscribable {
		subscribable = 1
	}

	return s.writeTx(ctx, func(q queryer) error {
		now := toMillis(s.now())
		if _, err := q.ExecContext(ctx, `
INSERT INTO access_groups (id, name, description, subscribable, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    subscribable = excluded.subscribable,
    updated_at = excluded.updated_at
`, group.ID, strings.TrimSpace(group.Name), strings.TrimSpace(group.Description), subscribable, now, now); err != nil {
			return fmt.Errorf("put group: %w", err)
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM access_group_statuses WHERE group_id = ?`, group.ID); err != nil {
			return fmt.Errorf("clear group statuses: %w", err)
		}
		for _, value := range group.Statuses {
			if _, err := q.ExecContext(ctx, `
INSERT OR IGNORE INTO access_group_statuses (group_id, status) VALUES (?, ?)
`, group.ID, string(value)); err != nil {
				return fmt.Errorf("put group status: %w", err)
			}
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM access_group_members WHERE group_id = ?`, group.ID); err != nil {
			return fmt.Errorf("clear group members: %w", err)
		}
		for _, userID := range group.Members {
			userID = strings.TrimSpace(userID)
			if userID == "" {
				continue
			}
			if _, err := q.ExecContext(ctx, `
INSERT OR IGNORE INTO access_group_members (group_id, user_id, added_at) VALUES (?, ?, ?)
`, group.ID, userID, now); err != nil {
				return fmt.Errorf("put group member: %w", err)
			}
		}
		return nil
	})
}

// DeleteGroup deletes a group; its section links cascade.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `DELETE FROM access_groups WHERE id = ?`, strings.TrimSpace(groupID))
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return requireAffected(result, "delete group")
}

// AddGroupMember appends an explicit member.
func (s *Store) AddGroupMember(ctx context.Context, groupID string, userID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	groupID = strings.TrimSpace(groupID)
	userID = strings.TrimSpace(userID)
	if groupID == "" || userID == "" {
		return fmt.Errorf("group id and user id are required")
	}
	_, err := s.q.ExecContext(ctx, `
INSERT INTO access_group_members (group_id, user_id, added_at) VALUES (?, ?, ?)
`, groupID, userID, toMillis(s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// RemoveGroupMember removes an explicit member.
func (s *Store) RemoveGroupMember(ctx context.Context, groupID string, userID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `
DELETE FROM access_group_members WHERE group_id = ? AND user_id = ?
`, strings.TrimSpace(groupID), strings.TrimSpace(userID))
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return requireAffected(result, "remove group member")
}

// GetSection loads one section with its group links.
func (s *Store) GetSection(ctx context.Context, sectionID string) (storage.SectionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SectionRecord{}, err
	}
	sectionID = strings.TrimSpace(sectionID)
	if sectionID == "" {
		return storage.SectionRecord{}, fmt.Errorf("section id is required")
	}
	row := s.q.QueryRowContext(ctx, `
SELECT id, name, type, created_at, updated_at
FROM sections
WHERE id = ?
`, sectionID)
	record, err := scanSection(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SectionRecord{}, storage.ErrNotFound
		}
		return storage.SectionRecord{}, fmt.Errorf("get section: %w", err)
	}
	if err := s.loadSectionGroups(ctx, &record); err != nil {
		return storage.SectionRecord{}, err
	}
	return record, nil
}

// ListSections returns every section ordered by name.
func (s *Store) ListSections(ctx context.Context) ([]storage.SectionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, `
SELECT id, name, type, created_at, updated_at
FROM sections
ORDER BY name ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	var records []storage.SectionRecord
	for rows.Next() {
		record, err := scanSection(rows.Scan)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan section row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate section rows: %w", err)
	}
	_ = rows.Close()

	for i := range records {
		if err := s.loadSectionGroups(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) loadSectionGroups(ctx context.Context, record *storage.SectionRecord) error {
	rows, err := s.q.QueryContext(ctx, `
SELECT group_id, purpose
FROM section_groups
WHERE section_id = ?
ORDER BY position ASC
`, record.ID)
	if err != nil {
		return fmt.Errorf("list section groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var groupID, purpose string
		if err := rows.Scan(&groupID, &purpose); err != nil {
			return fmt.Errorf("scan section group: %w", err)
		}
		switch section.Purpose(purpose) {
		case section.PurposeView:
			record.ViewingGroupIDs = append(record.ViewingGroupIDs, groupID)
		case section.PurposeMember:
			record.MemberGroupIDs = append(record.MemberGroupIDs, groupID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate section groups: %w", err)
	}
	return nil
}

// PutSection upserts a section and replaces its group links.
func (s *Store) PutSection(ctx context.Context, record storage.SectionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("section id is required")
	}
	sectionType, err := section.ParseType(string(record.Type))
	if err != nil {
		return err
	}
	record.Type = sectionType

	return s.writeTx(ctx, func(q queryer) error {
		now := toMillis(s.now())
		if _, err := q.ExecContext(ctx, `
INSERT INTO sections (id, name, type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    type = excluded.type,
    updated_at = excluded.updated_at
`, record.ID, strings.TrimSpace(record.Name), string(record.Type), now, now); err != nil {
			return fmt.Errorf("put section: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM section_groups WHERE section_id = ?`, record.ID); err != nil {
			return fmt.Errorf("clear section groups: %w", err)
		}

		position := 0
		link := func(groupID string, purpose section.Purpose) error {
			position++
			_, err := q.ExecContext(ctx, `
INSERT OR IGNORE INTO section_groups (section_id, group_id, purpose, position)
VALUES (?, ?, ?, ?)
`, record.ID, strings.TrimSpace(groupID), string(purpose), position)
			if err != nil {
				if isForeignKeyViolation(err) {
					return storage.ErrNotFound
				}
				return fmt.Errorf("put section group: %w", err)
			}
			return nil
		}
		for _, groupID := range record.ViewingGroupIDs {
			if err := link(groupID, section.PurposeView); err != nil {
				return err
			}
		}
		for _, groupID := range record.MemberGroupIDs {
			if err := link(groupID, section.PurposeMember); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSection deletes a section and its group links.
func (s *Store) DeleteSection(ctx context.Context, sectionID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, strings.TrimSpace(sectionID))
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return requireAffected(result, "delete section")
}

type scanner func(dest ...any) error

func scanUser(scan scanner) (access.User, error) {
	var user access.User
	var current, requested string
	if err := scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &current, &requested); err != nil {
		return access.User{}, err
	}
	user.Status = status.Status(current)
	user.RequestedStatus = status.Status(requested)
	return user, nil
}

func scanSection(scan scanner) (storage.SectionRecord, error) {
	var record storage.SectionRecord
	var sectionType string
	var createdAt, updatedAt int64
	if err := scan(&record.ID, &record.Name, &sectionType, &createdAt, &updatedAt); err != nil {
		return storage.SectionRecord{}, err
	}
	record.Type = section.Type(sectionType)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func requireAffected(result sql.Result, operation string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var _ storage.Store = (*Store)(nil)
