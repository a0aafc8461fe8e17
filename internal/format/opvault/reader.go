// Package opvault imports 1Password OPVault directory vaults: a profile.js
// holding the KDF parameters and wrapped master/overview keys, band_*.js
// files of encrypted item records and per-item .attachment files.
//
// Each item carries an independently encrypted overview (category, title,
// URLs) and detail (fields, sections) blob. A failed whole-vault key unwrap
// is fatal; a failed per-item detail decrypt only degrades that item to its
// overview data.
//
// Deletion policy: trashed items are hard deletions and move to the recycle
// bin marked expired. Items are grouped by category display name, one
// top-level group per non-empty category.
package opvault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/newhinton/keepassxc/internal/common"
	"github.com/newhinton/keepassxc/internal/cryptox"
	"github.com/newhinton/keepassxc/internal/filex"
	"github.com/newhinton/keepassxc/internal/format"
	"github.com/newhinton/keepassxc/internal/models"
)

// categoryNames maps 1Password category codes to canonical display names.
var categoryNames = map[string]string{
	"001": "Login",
	"002": "Credit Card",
	"003": "Secure Note",
	"004": "Identity",
	"005": "Password",
	"099": "Tombstone",
	"100": "Software License",
	"101": "Bank Account",
	"102": "Database",
	"103": "Driver License",
	"104": "Outdoor License",
	"105": "Membership",
	"106": "Passport",
	"107": "Rewards",
	"108": "SSN",
	"109": "Router",
	"110": "Server",
	"111": "Email",
}

// bandNames are the possible band file stems, band_0.js through band_F.js.
const bandDigits = "0123456789ABCDEF"

type profile struct {
	Salt        string `json:"salt"`
	Iterations  int    `json:"iterations"`
	MasterKey   string `json:"masterKey"`
	OverviewKey string `json:"overviewKey"`
}

type bandItem struct {
	UUID     string `json:"uuid"`
	Category string `json:"category"`
	Trashed  bool   `json:"trashed"`
	O        string `json:"o"`
	K        string `json:"k"`
	D        string `json:"d"`
}

type itemOverview struct {
	Title string   `json:"title"`
	URL   string   `json:"url"`
	URLs  []urlRef `json:"URLs"`
	Tags  []string `json:"tags"`
}

type urlRef struct {
	U string `json:"u"`
}

type itemDetail struct {
	Fields     []detailField   `json:"fields"`
	NotesPlain string          `json:"notesPlain"`
	Sections   []detailSection `json:"sections"`
	Password   string          `json:"password"`
}

type detailField struct {
	Designation string `json:"designation"`
	Name        string `json:"name"`
	Value       string `json:"value"`
}

type detailSection struct {
	Title  string         `json:"title"`
	Fields []SectionField `json:"fields"`
}

// SectionField is one typed field inside an item detail section: k is the
// value kind, n the internal name, t the display title and v the value
// (a string for most kinds, an object for addresses).
type SectionField struct {
	K string          `json:"k"`
	N string          `json:"n"`
	T string          `json:"t"`
	V json.RawMessage `json:"v"`
	A fieldAttrs      `json:"a"`
}

type fieldAttrs struct {
	Guarded string `json:"guarded"`
}

// Reader imports one OPVault directory per Convert call.
type Reader struct {
	format.ErrorTracker
}

func NewReader() *Reader { return &Reader{} }

// Convert opens the vault directory at path and decrypts it with password.
func (r *Reader) Convert(path, password string) (*models.Database, error) {
	db, err := convert(path, password)
	if r.Capture(err) != nil {
		return nil, err
	}
	return db, nil
}

func convert(path, password string) (*models.Database, error) {
	dir, err := locateProfileDir(path)
	if err != nil {
		return nil, err
	}

	var p profile
	if err := filex.ReadJSONScript(filepath.Join(dir, "profile.js"), &p); err != nil {
		return nil, err
	}
	masterKeys, overviewKeys, err := unlockProfile(&p, password)
	if err != nil {
		return nil, err
	}

	items, err := readBands(dir)
	if err != nil {
		return nil, err
	}

	db := models.NewDatabase()
	groups := make(map[string]*models.Group)

	for _, it := range items {
		e, itemKeys, err := buildEntry(&it, masterKeys, overviewKeys)
		if err != nil {
			// Overview or key failures for a single item leave a gap, not a
			// failed conversion.
			continue
		}
		attachEntryFiles(dir, it.UUID, e, itemKeys, overviewKeys)

		if it.Trashed {
			format.MoveToRecycleBin(db, e, time.Time{})
			continue
		}
		name := categoryNames[it.Category]
		if name == "" {
			name = it.Category
		}
		g := groups[name]
		if g == nil {
			g = models.NewGroup(name)
			db.RootGroup().AddGroup(g)
			groups[name] = g
		}
		g.AddEntry(e)
	}

	format.PruneEmptyGroups(db)
	return db, nil
}

// locateProfileDir accepts either the vault directory itself or its parent
// (the conventional layout keeps everything under <vault>/default).
func locateProfileDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", common.ErrInvalidFormat, path)
	}
	if _, err := os.Stat(filepath.Join(path, "profile.js")); err == nil {
		return path, nil
	}
	sub := filepath.Join(path, "default")
	if _, err := os.Stat(filepath.Join(sub, "profile.js")); err == nil {
		return sub, nil
	}
	return "", fmt.Errorf("%w: no profile.js found in %s", common.ErrInvalidFormat, path)
}

// unlockProfile derives the vault keys: PBKDF2-SHA512 stretches the password
// into a 64-byte key pair which unwraps the master and overview opdata
// blobs; the SHA-512 of each decrypted payload yields the working key pairs.
// Any failure here is a whole-vault failure.
func unlockProfile(p *profile, password string) (master, overview *cryptox.KeyPair, err error) {
	if p.Salt == "" || p.MasterKey == "" || p.OverviewKey == "" || p.Iterations <= 0 {
		return nil, nil, fmt.Errorf("%w: incomplete profile", common.ErrInvalidFormat)
	}
	salt, err := base64.StdEncoding.DecodeString(p.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: profile salt is not base64", common.ErrInvalidFormat)
	}

	derived, err := cryptox.KeyPairFromRaw(cryptox.Pbkdf2Sha512([]byte(password), salt, p.Iterations, 64))
	if err != nil {
		return nil, nil, err
	}

	if master, err = unwrapKey(p.MasterKey, derived); err != nil {
		return nil, nil, err
	}
	if overview, err = unwrapKey(p.OverviewKey, derived); err != nil {
		return nil, nil, err
	}
	return master, overview, nil
}

func unwrapKey(encoded string, keys *cryptox.KeyPair) (*cryptox.KeyPair, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapped key is not base64", common.ErrInvalidFormat)
	}
	plaintext, err := cryptox.DecryptOpdata(blob, keys)
	if err != nil {
		return nil, err
	}
	return cryptox.KeyPairFromRaw(cryptox.Sha512Sum(plaintext))
}

// readBands loads every band_0.js .. band_F.js present and returns the
// items sorted by UUID for deterministic output.
func readBands(dir string) ([]bandItem, error) {
	var items []bandItem
	found := false
	for _, d := range bandDigits {
		name := filepath.Join(dir, fmt.Sprintf("band_%c.js", d))
		if _, err := os.Stat(name); err != nil {
			continue
		}
		var band map[string]bandItem
		if err := filex.ReadJSONScript(name, &band); err != nil {
			return nil, err
		}
		found = true
		for uuid, it := range band {
			if it.UUID == "" {
				it.UUID = uuid
			}
			items = append(items, it)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: vault has no band files", common.ErrInvalidFormat)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UUID < items[j].UUID })
	return items, nil
}

// buildEntry decrypts one band item. The overview must decrypt; the detail
// is best-effort and its failure leaves an overview-only entry.
func buildEntry(it *bandItem, masterKeys, overviewKeys *cryptox.KeyPair) (*models.Entry, *cryptox.KeyPair, error) {
	e := models.NewEntry()

	ovRaw, err := decodeOpdata(it.O, overviewKeys)
	if err != nil {
		return nil, nil, err
	}
	var ov itemOverview
	if err := json.Unmarshal(ovRaw, &ov); err != nil {
		return nil, nil, fmt.Errorf("%w: item overview: %v", common.ErrInvalidFormat, err)
	}
	e.Title = ov.Title
	var urls format.URLList
	urls.Add(e, ov.URL)
	for _, u := range ov.URLs {
		urls.Add(e, u.U)
	}
	for _, t := range ov.Tags {
		e.AddTag(t)
	}

	itemKeys, err := unwrapItemKey(it.K, masterKeys)
	if err != nil {
		return e, nil, nil
	}
	detRaw, err := decodeOpdata(it.D, itemKeys)
	if err != nil {
		return e, itemKeys, nil
	}
	var det itemDetail
	if err := json.Unmarshal(detRaw, &det); err != nil {
		return e, itemKeys, nil
	}
	fillDetail(e, &det)
	return e, itemKeys, nil
}

func decodeOpdata(encoded string, keys *cryptox.KeyPair) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: missing opdata blob", common.ErrInvalidFormat)
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: opdata blob is not base64", common.ErrInvalidFormat)
	}
	return cryptox.DecryptOpdata(blob, keys)
}

// unwrapItemKey decrypts the per-item key blob: IV ‖ ciphertext ‖ HMAC-32,
// authenticated and decrypted with the master key pair. The plaintext's
// first 64 bytes are the item's enc/mac keys.
func unwrapItemKey(encoded string, masterKeys *cryptox.KeyPair) (*cryptox.KeyPair, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(blob) < 16+64+32 {
		return nil, fmt.Errorf("%w: malformed item key", common.ErrDecryptionFailed)
	}
	iv, ct, mac := blob[:16], blob[16:len(blob)-32], blob[len(blob)-32:]
	if err := cryptox.VerifyHmacSha256(masterKeys.Mac, mac, iv, ct); err != nil {
		return nil, err
	}
	plaintext, err := cryptox.DecryptAesCbcRaw(masterKeys.Enc, iv, ct)
	if err != nil {
		return nil, err
	}
	return cryptox.KeyPairFromRaw(plaintext[:64])
}

func fillDetail(e *models.Entry, det *itemDetail) {
	e.Notes = det.NotesPlain

	for _, f := range det.Fields {
		switch f.Designation {
		case "username":
			e.Username = f.Value
		case "password":
			e.Password = f.Value
		}
	}
	if e.Password == "" && det.Password != "" {
		e.Password = det.Password
	}

	for _, s := range det.Sections {
		for i := range s.Fields {
			fillSectionField(e, s.Title, &s.Fields[i])
		}
	}
}

// FillFromSectionField applies one decrypted section field to an entry. It
// is exported so the TOTP first-wins behavior can be driven directly.
func (r *Reader) FillFromSectionField(e *models.Entry, sectionTitle string, f *SectionField) {
	fillSectionField(e, sectionTitle, f)
}

func fillSectionField(e *models.Entry, sectionTitle string, f *SectionField) {
	// TOTP settings fields are named TOTP_<uuid> regardless of kind.
	if strings.HasPrefix(f.N, "TOTP_") || f.K == "totp" {
		format.SetEntryTotp(e, jsonString(f.V))
		return
	}

	key := format.SectionKey(sectionTitle, f.T)
	protected := f.K == "concealed" || f.A.Guarded == "yes"

	switch f.K {
	case "date":
		var secs int64
		if err := json.Unmarshal(f.V, &secs); err != nil {
			return
		}
		when := time.Unix(secs, 0).UTC()
		if f.N == "expiry" {
			e.Expires = true
			e.ExpiryTime = when
			return
		}
		e.Attributes().Set(key, when.Format(time.RFC3339), protected)
	case "monthYear":
		var ym int
		if err := json.Unmarshal(f.V, &ym); err == nil && ym > 0 {
			e.Attributes().Set(key, fmt.Sprintf("%d", ym), protected)
		}
	case "address":
		if v := jsonAddress(f.V); len(v) > 0 {
			for part, val := range v {
				e.Attributes().Set(format.SectionKey(key, part), val, protected)
			}
		}
	default:
		if v := jsonString(f.V); v != "" {
			e.Attributes().Set(key, v, protected)
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

// jsonAddress flattens an address object into its string-valued components,
// e.g. street/city/state/zip/country, keyed by component name.
func jsonAddress(raw json.RawMessage) map[string]string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok && s != "" {
			out[k] = s
		}
	}
	return out
}
