// Package protonpass imports Proton Pass JSON exports. Vaults map to
// top-level groups and items to entries; the item state field distinguishes
// active records from trashed ones.
//
// Deletion policy: a trashed state is a hard deletion, so those items move
// to the recycle bin and are marked expired.
package protonpass

import (
	"fmt"
	"time"

	"github.com/newhinton/keepassxc/internal/common"
	"github.com/newhinton/keepassxc/internal/filex"
	"github.com/newhinton/keepassxc/internal/format"
	"github.com/newhinton/keepassxc/internal/models"
)

// Item states.
const (
	stateActive  = 1
	stateTrashed = 2
)

var cardFields = []format.FieldMapping{
	{Source: "cardholderName", Key: "card_cardholderName"},
	{Source: "cardType", Key: "card_cardType"},
	{Source: "expirationDate", Key: "card_expirationDate"},
	{Source: "pin", Key: "card_pin", Protected: true},
}

type export struct {
	Encrypted bool             `json:"encrypted"`
	Vaults    map[string]vault `json:"vaults"`
}

type vault struct {
	Name  string `json:"name"`
	Items []item `json:"items"`
}

type item struct {
	State int      `json:"state"`
	Data  itemData `json:"data"`
}

type itemData struct {
	Metadata    metadata     `json:"metadata"`
	Type        string       `json:"type"`
	Content     content      `json:"content"`
	ExtraFields []extraField `json:"extraFields"`
}

type metadata struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

type content struct {
	ItemEmail          string   `json:"itemEmail"`
	ItemUsername       string   `json:"itemUsername"`
	Username           string   `json:"username"`
	Password           string   `json:"password"`
	URLs               []string `json:"urls"`
	TotpURI            string   `json:"totpUri"`
	CardholderName     string   `json:"cardholderName"`
	CardType           string   `json:"cardType"`
	Number             string   `json:"number"`
	VerificationNumber string   `json:"verificationNumber"`
	ExpirationDate     string   `json:"expirationDate"`
	PIN                string   `json:"pin"`
}

type extraField struct {
	FieldName string `json:"fieldName"`
	Type      string `json:"type"`
	Data      struct {
		Content string `json:"content"`
	} `json:"data"`
}

// Reader imports one Proton Pass export file per Convert call.
type Reader struct {
	format.ErrorTracker
}

func NewReader() *Reader { return &Reader{} }

// Convert reads the export at path. Proton Pass exports are plaintext JSON;
// the password argument is ignored.
func (r *Reader) Convert(path, _ string) (*models.Database, error) {
	db, err := convert(path)
	if r.Capture(err) != nil {
		return nil, err
	}
	return db, nil
}

func convert(path string) (*models.Database, error) {
	var doc export
	if err := filex.ReadJSONFile(path, &doc); err != nil {
		return nil, err
	}
	if doc.Encrypted {
		return nil, fmt.Errorf("%w: PGP-encrypted export", common.ErrUnsupportedVersion)
	}
	if doc.Vaults == nil {
		return nil, fmt.Errorf("%w: missing vaults object", common.ErrInvalidFormat)
	}

	db := models.NewDatabase()
	for _, v := range doc.Vaults {
		group := models.NewGroup(v.Name)
		db.RootGroup().AddGroup(group)
		for i := range v.Items {
			it := &v.Items[i]
			e := fillEntry(it)
			if it.State == stateTrashed {
				format.MoveToRecycleBin(db, e, time.Time{})
			} else {
				group.AddEntry(e)
			}
		}
	}

	format.PruneEmptyGroups(db)
	return db, nil
}

func fillEntry(it *item) *models.Entry {
	e := models.NewEntry()
	e.Title = it.Data.Metadata.Name
	e.Notes = it.Data.Metadata.Note

	c := &it.Data.Content
	switch it.Data.Type {
	case "login", "alias":
		e.Username = firstNonEmpty(c.ItemUsername, c.Username, c.ItemEmail)
		e.Password = c.Password
		var urls format.URLList
		for _, u := range c.URLs {
			urls.Add(e, u)
		}
		if c.TotpURI != "" {
			format.SetEntryTotp(e, c.TotpURI)
		}
	case "creditCard":
		// Card number and verification number take the username/password
		// slots so they stay visible in credential views.
		e.Username = c.Number
		e.Password = c.VerificationNumber
		format.ApplyFieldTable(e, cardFields, func(src string) string {
			switch src {
			case "cardholderName":
				return c.CardholderName
			case "cardType":
				return c.CardType
			case "expirationDate":
				return c.ExpirationDate
			case "pin":
				return c.PIN
			}
			return ""
		})
	case "note":
		// Notes only; already set.
	}

	for _, f := range it.Data.ExtraFields {
		switch f.Type {
		case "totp":
			// First-wins: an already-set TOTP stays, the competing value is
			// still recorded, both under otp_<n> and the field's own name.
			format.SetEntryTotp(e, f.Data.Content)
			e.Attributes().Set(f.FieldName, f.Data.Content, false)
		case "hidden":
			e.Attributes().Set(f.FieldName, f.Data.Content, true)
		default:
			e.Attributes().Set(f.FieldName, f.Data.Content, false)
		}
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
