package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Value returns the setting at a dotted key path (for example
// "prompt.header") in cfg. Strings come back unquoted, everything else as JSON.
func Value(cfg *Config, key string) (string, bool, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", false, fmt.Errorf("marshaling config: %w", err)
	}

	res := gjson.GetBytes(data, key)
	if !res.Exists() {
		return "", false, nil
	}
	if res.Type == gjson.String {
		return res.String(), true, nil
	}
	return res.Raw, true, nil
}

// SetValue writes one setting into the config file at path, leaving every
// other key in the file as it was. A value that parses as JSON is stored as
// JSON (numbers, booleans, arrays); anything else is stored as a string.
func SetValue(path, key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data = []byte("{}")
	} else if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var updated []byte
	if gjson.Valid(value) {
		updated, err = sjson.SetRawBytes(data, key, []byte(value))
	} else {
		updated, err = sjson.SetBytes(data, key, value)
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	var check Config
	if err := json.Unmarshal(updated, &check); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, pretty.Pretty(updated), 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// knownKey reports whether key names a setting. Any name under context_sets is allowed.
func knownKey(key string) bool {
	if strings.HasPrefix(key, "context_sets.") {
		return len(key) > len("context_sets.")
	}
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		return false
	}
	// Optional fields are omitted when empty, so check the schema with them filled in.
	filled, _ := sjson.SetBytes(data, "gather.base_dir", ".")
	return gjson.GetBytes(filled, key).Exists()
}
