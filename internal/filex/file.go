// Package filex provides small file-reading helpers shared by the import
// readers. All helpers read the whole file eagerly and hold no handle after
// returning, on any exit path.
package filex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/newhinton/keepassxc/internal/common"
)

// ReadJSONFile reads path and unmarshals its content into v. Structural
// problems are reported as invalid-format errors with the file name.
func ReadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidFormat, path, err)
	}
	return nil
}

// ReadJSONScript reads a JavaScript-wrapped JSON file, e.g. OPVault's
// "var profile={...};" or "ld({...});", by trimming everything outside the
// outermost braces before unmarshalling.
func ReadJSONScript(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start < 0 || end < start {
		return fmt.Errorf("%w: %s: no JSON object found", common.ErrInvalidFormat, path)
	}
	if err := json.Unmarshal(data[start:end+1], v); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidFormat, path, err)
	}
	return nil
}
