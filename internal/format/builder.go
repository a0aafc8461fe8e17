package format

import (
	"time"

	"github.com/newhinton/keepassxc/internal/models"
)

// SetEntryTotp parses value (an otpauth:// URI or bare secret) and applies
// it to the entry with first-wins semantics: existing settings stay
// untouched and the competing raw value lands in an otp_<n> attribute.
func SetEntryTotp(e *models.Entry, value string) {
	if s := models.ParseTotpURI(value); s != nil {
		e.SetTotp(s, value)
	}
}

// MoveToRecycleBin relocates a hard-deleted entry to the lazily created
// recycle bin and marks it expired.
func MoveToRecycleBin(db *models.Database, e *models.Entry, deletedAt time.Time) {
	if deletedAt.IsZero() {
		deletedAt = time.Now()
	}
	e.Expires = true
	e.ExpiryTime = deletedAt
	db.EnsureRecycleBin().AddEntry(e)
}

// PruneEmptyGroups removes every empty group from the tree. The recycle bin
// is exempt: once created it stays, even if a later pass finds it empty.
func PruneEmptyGroups(db *models.Database) {
	pruneChildren(db.RootGroup(), db.RecycleBin())
}

func pruneChildren(g *models.Group, keep *models.Group) {
	for _, c := range append([]*models.Group(nil), g.Children()...) {
		if c == keep {
			continue
		}
		pruneChildren(c, keep)
		if c.IsEmpty() {
			g.RemoveGroup(c)
		}
	}
}
