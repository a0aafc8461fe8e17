package opvault

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newhinton/keepassxc/internal/common"
	"github.com/newhinton/keepassxc/internal/cryptox"
	"github.com/newhinton/keepassxc/internal/models"
)

// Attachment file layout: "OPCLDAT" magic, a version byte, a little-endian
// uint16 metadata length, the metadata JSON, then the payload as an opdata01
// blob under the owning item's keys. The metadata carries the item UUID and
// an overview blob (overview keys) holding the original filename.
const (
	attachmentMagic   = "OPCLDAT"
	attachmentVersion = 1
)

type attachmentMeta struct {
	ItemUUID string `json:"itemUUID"`
	Overview string `json:"overview"`
}

type attachmentOverview struct {
	Filename string `json:"filename"`
}

// attachEntryFiles loads every <itemUUID>_*.attachment file next to the
// bands and adds the decrypted payloads to the entry. Attachments are
// best-effort: a malformed or undecryptable file is skipped.
func attachEntryFiles(dir, itemUUID string, e *models.Entry, itemKeys, overviewKeys *cryptox.KeyPair) {
	if itemKeys == nil {
		return
	}
	matches, err := filepath.Glob(filepath.Join(dir, itemUUID+"_*.attachment"))
	if err != nil {
		return
	}
	for _, path := range matches {
		name, data, err := readAttachment(path, itemKeys, overviewKeys)
		if err != nil {
			continue
		}
		e.Attachments[name] = data
	}
}

func readAttachment(path string, itemKeys, overviewKeys *cryptox.KeyPair) (string, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	header := len(attachmentMagic) + 1 + 2
	if len(raw) < header || string(raw[:len(attachmentMagic)]) != attachmentMagic {
		return "", nil, fmt.Errorf("%w: not an attachment file", common.ErrInvalidFormat)
	}
	if raw[len(attachmentMagic)] != attachmentVersion {
		return "", nil, fmt.Errorf("%w: attachment version %d", common.ErrUnsupportedVersion, raw[len(attachmentMagic)])
	}
	metaLen := int(binary.LittleEndian.Uint16(raw[len(attachmentMagic)+1 : header]))
	if len(raw) < header+metaLen {
		return "", nil, fmt.Errorf("%w: truncated attachment metadata", common.ErrInvalidFormat)
	}

	var meta attachmentMeta
	if err := json.Unmarshal(raw[header:header+metaLen], &meta); err != nil {
		return "", nil, fmt.Errorf("%w: attachment metadata: %v", common.ErrInvalidFormat, err)
	}
	ovBlob, err := base64.StdEncoding.DecodeString(meta.Overview)
	if err != nil {
		return "", nil, fmt.Errorf("%w: attachment overview is not base64", common.ErrInvalidFormat)
	}
	ovRaw, err := cryptox.DecryptOpdata(ovBlob, overviewKeys)
	if err != nil {
		return "", nil, err
	}
	var ov attachmentOverview
	if err := json.Unmarshal(ovRaw, &ov); err != nil || ov.Filename == "" {
		return "", nil, fmt.Errorf("%w: attachment overview metadata", common.ErrInvalidFormat)
	}

	payload, err := cryptox.DecryptOpdata(raw[header+metaLen:], itemKeys)
	if err != nil {
		return "", nil, err
	}
	return ov.Filename, payload, nil
}
