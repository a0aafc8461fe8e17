package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhinton/keepassxc/internal/models"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "vault.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PingContext(ctx))
	assert.True(t, tableExists(t, db, "entries"))
	assert.True(t, tableExists(t, db, "goose_db_version"))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	assert.True(t, tableExists(t, db, "entries"))
}

func sampleDatabase(t *testing.T) *models.Database {
	t.Helper()
	db := models.NewDatabase()

	personal := models.NewGroup("Personal")
	db.RootGroup().AddGroup(personal)

	e := models.NewEntry()
	e.Title = "Login"
	e.Username = "team@keepassxc.org"
	e.Password = "secret"
	e.URL = "https://www.keepassxc.org"
	e.Notes = "a note"
	e.AddTag("Favorite")
	e.AddTag("Sample")
	e.Attributes().Set("PIN", "1234", true)
	e.Attributes().Set("hostname", "example.com", false)
	e.SetTotp(models.ParseTotpURI("otpauth://totp/x?secret=SEEDSEED"), "")
	e.Attachments["photo.png"] = []byte{1, 2, 3}
	personal.AddEntry(e)

	deleted := models.NewEntry()
	deleted.Title = "Old"
	deleted.Expires = true
	deleted.ExpiryTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	db.EnsureRecycleBin().AddEntry(deleted)

	return db
}

func TestFlatten(t *testing.T) {
	rows, err := Flatten(sampleDatabase(t))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byTitle := map[string]*EntryRow{}
	for _, r := range rows {
		byTitle[r.Title] = r
	}

	login := byTitle["Login"]
	require.NotNil(t, login)
	assert.Equal(t, "/Personal", login.GroupPath)
	assert.Equal(t, "team@keepassxc.org", login.Username)
	assert.Equal(t, "Favorite,Sample", login.Tags)
	assert.Equal(t, "SEEDSEED", login.TotpSecret)
	assert.Equal(t, 1, login.AttachmentCount)
	assert.Contains(t, login.Attributes, `"PIN":{"value":"1234","protected":true}`)
	assert.Contains(t, login.Attributes, `"hostname":{"value":"example.com"}`)

	old := byTitle["Old"]
	require.NotNil(t, old)
	assert.Equal(t, "/"+models.RecycleBinName, old.GroupPath)
	assert.True(t, old.Expires)
	assert.Equal(t, "2024-03-01T12:00:00Z", old.ExpiryTime)
}

func TestSaveDatabase_RoundTripAndIdempotent(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	source := sampleDatabase(t)

	saved, err := SaveDatabase(ctx, sqlDB, source)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	repo := NewSQLiteRepository(sqlDB)
	first, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Saving the same database again converges instead of duplicating.
	_, err = SaveDatabase(ctx, sqlDB, source)
	require.NoError(t, err)

	second, err := repo.GetAll(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("re-import changed stored rows (-first +second):\n%s", diff)
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetByUUID(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	source := sampleDatabase(t)
	_, err = SaveDatabase(ctx, sqlDB, source)
	require.NoError(t, err)

	wantUUID := source.RootGroup().FindEntryByPath("/Personal/Login").UUID.String()

	repo := NewSQLiteRepository(sqlDB)
	row, err := repo.GetByUUID(ctx, wantUUID)
	require.NoError(t, err)
	assert.Equal(t, "Login", row.Title)

	_, err = repo.GetByUUID(ctx, "no-such-uuid")
	assert.Error(t, err)
}
