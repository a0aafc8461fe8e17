package format

import (
	"fmt"

	"github.com/newhinton/keepassxc/internal/models"
)

// FieldMapping declares how one source field translates to a canonical
// attribute: the foreign field name, the attribute key to store it under and
// whether the value is sensitive. Per-category mapping tables are data, not
// control flow; ApplyFieldTable is the single routine consuming them.
type FieldMapping struct {
	Source    string
	Key       string
	Protected bool
}

// ApplyFieldTable walks a mapping table and stores every non-empty source
// value on the entry. lookup resolves a source field name to its value;
// values are stored verbatim, whitespace and newlines included.
func ApplyFieldTable(e *models.Entry, table []FieldMapping, lookup func(source string) string) {
	for _, m := range table {
		if v := lookup(m.Source); v != "" {
			e.Attributes().Set(m.Key, v, m.Protected)
		}
	}
}

// SectionKey namespaces a field name with its section label to avoid
// collisions across sections of the same item.
func SectionKey(section, field string) string {
	if section == "" {
		return field
	}
	return section + "_" + field
}

/// URLList assigns URLs to an entry in source order: the first becomes the
// entry's primary URL, every later one an indexed KP2A_URL_<n> attribute.
type URLList struct {
	n int
}

// Add places url on the entry. Empty strings and exact duplicates of the
// primary URL are ignored.
func (u *URLList) Add(e *models.Entry, url string) {
	if url == "" {
		return
	}
	if u.n == 0 {
		e.URL = url
		u.n++
		return
	}
	if url == e.URL {
		return
	}
	e.Attributes().Set(fmt.Sprintf("KP2A_URL_%d", u.n), url, false)
	u.n++
}
