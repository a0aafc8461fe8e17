package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/newhinton/keepassxc/internal/dbx"
	"github.com/newhinton/keepassxc/internal/models"
)

// EntryRow is the flat persisted form of one entry. GroupPath is the
// '/'-joined chain of group names from the root down to the owning group.
type EntryRow struct {
	UUID            string
	GroupPath       string
	Title           string
	Username        string
	Password        string
	URL             string
	Notes           string
	Tags            string
	Expires         bool
	ExpiryTime      string
	Attributes      string
	TotpSecret      string
	AttachmentCount int
}

type attrJSON struct {
	Value     string `json:"value"`
	Protected bool   `json:"protected,omitempty"`
}

// NewEntryRow flattens e into its persisted form.
func NewEntryRow(groupPath string, e *models.Entry) (*EntryRow, error) {
	attrs := make(map[string]attrJSON, e.Attributes().Len())
	for _, key := range e.Attributes().Keys() {
		attrs[key] = attrJSON{
			Value:     e.Attributes().Value(key),
			Protected: e.Attributes().IsProtected(key),
		}
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}

	tags := e.Tags()
	sort.Strings(tags)

	row := &EntryRow{
		UUID:            e.UUID.String(),
		GroupPath:       groupPath,
		Title:           e.Title,
		Username:        e.Username,
		Password:        e.Password,
		URL:             e.URL,
		Notes:           e.Notes,
		Tags:            strings.Join(tags, ","),
		Expires:         e.Expires,
		Attributes:      string(encoded),
		AttachmentCount: len(e.Attachments),
	}
	if e.Expires {
		row.ExpiryTime = e.ExpiryTime.UTC().Format(time.RFC3339)
	}
	if e.HasTotp() {
		row.TotpSecret = e.TotpSettings().Key
	}
	return row, nil
}

// Flatten walks the database tree depth-first and returns one row per entry.
func Flatten(db *models.Database) ([]*EntryRow, error) {
	var rows []*EntryRow
	var walk func(g *models.Group, path string) error
	walk = func(g *models.Group, path string) error {
		for _, e := range g.Entries() {
			row, err := NewEntryRow(path, e)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		for _, c := range g.Children() {
			if err := walk(c, path+"/"+c.Name); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(db.RootGroup(), ""); err != nil {
		return nil, err
	}
	return rows, nil
}

// SQLiteRepository implements entry persistence over a DBTX, so it works
// both with a bare *sql.DB and inside a transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts a row by uuid. On conflict every column except the
// key is replaced, so re-importing the same export converges.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, row *EntryRow) error {
	query := `INSERT INTO entries
			(uuid, group_path, title, username, password, url, notes, tags,
			 expires, expiry_time, attributes, totp_secret, attachment_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(uuid) DO UPDATE SET
				group_path = excluded.group_path,
				title = excluded.title,
				username = excluded.username,
				password = excluded.password,
				url = excluded.url,
				notes = excluded.notes,
				tags = excluded.tags,
				expires = excluded.expires,
				expiry_time = excluded.expiry_time,
				attributes = excluded.attributes,
				totp_secret = excluded.totp_secret,
				attachment_count = excluded.attachment_count
	`
	_, err := r.db.ExecContext(ctx, query,
		row.UUID, row.GroupPath, row.Title, row.Username, row.Password,
		row.URL, row.Notes, row.Tags, row.Expires, row.ExpiryTime,
		row.Attributes, row.TotpSecret, row.AttachmentCount)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// GetAll lists every stored row ordered by group path, then title.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*EntryRow, error) {
	query := `SELECT uuid, group_path, title, username, password, url, notes, tags,
			expires, expiry_time, attributes, totp_secret, attachment_count
			FROM entries ORDER BY group_path, title`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*EntryRow
	for rows.Next() {
		row := &EntryRow{}
		if err := rows.Scan(&row.UUID, &row.GroupPath, &row.Title, &row.Username,
			&row.Password, &row.URL, &row.Notes, &row.Tags, &row.Expires,
			&row.ExpiryTime, &row.Attributes, &row.TotpSecret, &row.AttachmentCount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByUUID returns a single row, or sql.ErrNoRows wrapped when absent.
func (r *SQLiteRepository) GetByUUID(ctx context.Context, id string) (*EntryRow, error) {
	query := `SELECT uuid, group_path, title, username, password, url, notes, tags,
			expires, expiry_time, attributes, totp_secret, attachment_count
			FROM entries WHERE uuid = ?`
	row := &EntryRow{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&row.UUID, &row.GroupPath,
		&row.Title, &row.Username, &row.Password, &row.URL, &row.Notes, &row.Tags,
		&row.Expires, &row.ExpiryTime, &row.Attributes, &row.TotpSecret,
		&row.AttachmentCount)
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return row, nil
}

// Count returns the number of stored entries.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SaveDatabase flattens database and upserts every entry inside one
// transaction, so a failed import never leaves a half-written vault.
func SaveDatabase(ctx context.Context, db *sql.DB, database *models.Database) (int, error) {
	entryRows, err := Flatten(database)
	if err != nil {
		return 0, err
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, row := range entryRows {
			if err := repo.CreateOrUpdate(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entryRows), nil
}
