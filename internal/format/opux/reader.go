// Package opux imports 1Password 1PUX bundles: a zip archive holding an
// export.data JSON document (accounts, vaults, items) plus attachment and
// icon files under files/. The bundle itself is not encrypted; password
// protection, when used, is applied upstream of this reader.
//
// Deletion policy: the archived state is a soft, cosmetic flag and maps to
// an "Archived" tag; explicitly trashed items move to the recycle bin.
package opux

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/newhinton/keepassxc/internal/common"
	"github.com/newhinton/keepassxc/internal/format"
	"github.com/newhinton/keepassxc/internal/models"
)

// categoryPassword is the 1Password category whose secret lives in the
// item's top-level password field rather than a login field.
const categoryPassword = "005"

type exportData struct {
	Accounts []account `json:"accounts"`
}

type account struct {
	Vaults []vault `json:"vaults"`
}

type vault struct {
	Attrs vaultAttrs `json:"attrs"`
	Items []item     `json:"items"`
}

type vaultAttrs struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type item struct {
	CategoryUUID string   `json:"categoryUuid"`
	FavIndex     int      `json:"favIndex"`
	State        string   `json:"state"`
	Trashed      bool     `json:"trashed"`
	Details      details  `json:"details"`
	Overview     overview `json:"overview"`
}

type overview struct {
	Title string   `json:"title"`
	URL   string   `json:"url"`
	URLs  []urlRef `json:"urls"`
	Tags  []string `json:"tags"`
}

type urlRef struct {
	URL string `json:"url"`
}

type details struct {
	LoginFields        []loginField   `json:"loginFields"`
	NotesPlain         string         `json:"notesPlain"`
	Sections           []section      `json:"sections"`
	Password           string         `json:"password"`
	DocumentAttributes *documentAttrs `json:"documentAttributes"`
}

type loginField struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Designation string `json:"designation"`
	FieldType   string `json:"fieldType"`
}

type section struct {
	Title  string         `json:"title"`
	Fields []sectionField `json:"fields"`
}

type sectionField struct {
	Title   string                     `json:"title"`
	ID      string                     `json:"id"`
	Guarded bool                       `json:"guarded"`
	Value   map[string]json.RawMessage `json:"value"`
}

type documentAttrs struct {
	FileName   string `json:"fileName"`
	DocumentID string `json:"documentId"`
}

// Reader imports one 1PUX bundle per Convert call.
type Reader struct {
	format.ErrorTracker
}

func NewReader() *Reader { return &Reader{} }

// Convert reads the bundle at path. The password argument is ignored; 1PUX
// bundles carry no encryption of their own.
func (r *Reader) Convert(path, _ string) (*models.Database, error) {
	db, err := convert(path)
	if r.Capture(err) != nil {
		return nil, err
	}
	return db, nil
}

func convert(path string) (*models.Database, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening 1pux bundle: %w", err)
	}
	defer zr.Close()

	raw, err := readArchiveFile(&zr.Reader, "export.data")
	if err != nil {
		return nil, fmt.Errorf("%w: missing export.data: %v", common.ErrInvalidFormat, err)
	}
	var doc exportData
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: export.data: %v", common.ErrInvalidFormat, err)
	}
	if len(doc.Accounts) == 0 {
		return nil, fmt.Errorf("%w: no accounts in export", common.ErrInvalidFormat)
	}

	db := models.NewDatabase()
	for _, acct := range doc.Accounts {
		for _, v := range acct.Vaults {
			group := models.NewGroup(v.Attrs.Name)
			db.RootGroup().AddGroup(group)
			if v.Attrs.Avatar != "" {
				if icon, err := readArchiveFile(&zr.Reader, "files/"+v.Attrs.Avatar); err == nil {
					group.IconUUID = db.AddCustomIcon(icon)
				}
			}
			for i := range v.Items {
				it := &v.Items[i]
				e := fillEntry(it, &zr.Reader)
				if it.Trashed {
					format.MoveToRecycleBin(db, e, time.Time{})
				} else {
					group.AddEntry(e)
				}
			}
		}
	}

	format.PruneEmptyGroups(db)
	return db, nil
}

func fillEntry(it *item, zr *zip.Reader) *models.Entry {
	e := models.NewEntry()
	e.Title = it.Overview.Title
	e.Notes = it.Details.NotesPlain

	var urls format.URLList
	urls.Add(e, it.Overview.URL)
	for _, u := range it.Overview.URLs {
		urls.Add(e, u.URL)
	}

	for _, t := range it.Overview.Tags {
		e.AddTag(t)
	}
	if it.FavIndex > 0 {
		e.AddTag("Favorite")
	}
	if it.State == "archived" {
		e.AddTag("Archived")
	}

	for _, f := range it.Details.LoginFields {
		switch f.Designation {
		case "username":
			e.Username = f.Value
		case "password":
			e.Password = f.Value
		default:
			if f.Name != "" && f.Value != "" {
				e.Attributes().Set(f.Name, f.Value, f.FieldType == "P")
			}
		}
	}
	if it.CategoryUUID == categoryPassword && e.Password == "" {
		e.Password = it.Details.Password
	}

	for _, s := range it.Details.Sections {
		for _, f := range s.Fields {
			fillSectionField(e, s.Title, &f)
		}
	}

	if da := it.Details.DocumentAttributes; da != nil && da.FileName != "" {
		name := fmt.Sprintf("files/%s__%s", da.DocumentID, da.FileName)
		if data, err := readArchiveFile(zr, name); err == nil {
			e.Attachments[da.FileName] = data
		}
	}
	return e
}

// fillSectionField decodes the single-key value object of a section field
// and stores it under "<section>_<field>". The key of the value object names
// the field kind; concealed kinds and guarded fields become protected
// attributes, totp kinds feed the entry's TOTP settings.
func fillSectionField(e *models.Entry, sectionTitle string, f *sectionField) {
	for kind, raw := range f.Value {
		key := format.SectionKey(sectionTitle, f.Title)
		switch kind {
		case "totp":
			format.SetEntryTotp(e, jsonString(raw))
		case "concealed":
			e.Attributes().Set(key, jsonString(raw), true)
		case "email":
			e.Attributes().Set(key, emailAddress(raw), f.Guarded)
		case "date":
			var secs int64
			if err := json.Unmarshal(raw, &secs); err == nil {
				e.Attributes().Set(key, time.Unix(secs, 0).UTC().Format(time.RFC3339), f.Guarded)
			}
		case "monthYear":
			var ym int
			if err := json.Unmarshal(raw, &ym); err == nil && ym > 0 {
				e.Attributes().Set(key, fmt.Sprintf("%d", ym), f.Guarded)
			}
		case "address":
			e.Attributes().Set(key, formatAddress(raw), f.Guarded)
		default:
			// string, url, phone, menuItem, gender, creditCardNumber, ...
			if v := jsonString(raw); v != "" {
				e.Attributes().Set(key, v, f.Guarded)
			}
		}
	}
}

func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func emailAddress(raw json.RawMessage) string {
	var v struct {
		EmailAddress string `json:"email_address"`
	}
	if err := json.Unmarshal(raw, &v); err == nil && v.EmailAddress != "" {
		return v.EmailAddress
	}
	return jsonString(raw)
}

// formatAddress renders a 1Password address object as the conventional
// three-line street / city, state zip / country block.
func formatAddress(raw json.RawMessage) string {
	var a struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Zip     string `json:"zip"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return ""
	}
	var lines []string
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	cityLine := a.City
	if a.State != "" {
		cityLine += ", " + a.State
	}
	if a.Zip != "" {
		cityLine += " " + a.Zip
	}
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	if a.Country != "" {
		lines = append(lines, a.Country)
	}
	return strings.Join(lines, "\n")
}

func readArchiveFile(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
