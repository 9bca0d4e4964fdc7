package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/diogo/geminiwin95/internal/models"
)

// Validation constants
const (
	MaxNameLength        = 50
	MaxInstructionLength = 32 * 1024 // 32KB
)

// ValidateGem validates a gem's fields
func ValidateGem(g models.SavedGem) error {
	fieldErrors := make(map[string]string)

	name := strings.TrimSpace(g.Name)
	switch {
	case name == "":
		fieldErrors["name"] = "name is required"
	case name != g.Name:
		fieldErrors["name"] = "name must not start or end with spaces"
	case len([]rune(name)) > MaxNameLength:
		fieldErrors["name"] = fmt.Sprintf("name too long (max %d characters)", MaxNameLength)
	case models.IsBuiltinName(name):
		fieldErrors["name"] = fmt.Sprintf("'%s' is reserved by a built-in persona", name)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		fieldErrors["name"] = "name must not contain control characters"
	}

	if len(g.Instruction) > MaxInstructionLength {
		fieldErrors["instruction"] = fmt.Sprintf("instruction too long (max %d characters)", MaxInstructionLength)
	}

	if len(fieldErrors) > 0 {
		keys := make([]string, 0, len(fieldErrors))
		for k := range fieldErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + fieldErrors[k]
		}
		return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
	}

	return nil
}

func findGem(gems []models.SavedGem, name string) int {
	for i, g := range gems {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// GetGem returns a saved gem by name
func GetGem(name string) (*models.SavedGem, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if i := findGem(cfg.SavedGems, name); i >= 0 {
		g := cfg.SavedGems[i]
		return &g, nil
	}
	return nil, fmt.Errorf("gem '%s' not found", name)
}

// AddGem adds a new gem
func AddGem(g models.SavedGem) error {
	if err := ValidateGem(g); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	if findGem(cfg.SavedGems, g.Name) >= 0 {
		return fmt.Errorf("gem '%s' already exists", g.Name)
	}

	cfg.SavedGems = append(cfg.SavedGems, g)
	return SaveConfig(cfg)
}

// UpdateGem replaces the instruction of an existing gem
func UpdateGem(g models.SavedGem) error {
	if err := ValidateGem(g); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	i := findGem(cfg.SavedGems, g.Name)
	if i < 0 {
		return fmt.Errorf("gem '%s' not found", g.Name)
	}
	cfg.SavedGems[i] = g
	return SaveConfig(cfg)
}

// DeleteGem removes every gem with the given name
func DeleteGem(name string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	kept := make([]models.SavedGem, 0, len(cfg.SavedGems))
	for _, g := range cfg.SavedGems {
		if g.Name != name {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(cfg.SavedGems) {
		return fmt.Errorf("gem '%s' not found", name)
	}

	cfg.SavedGems = kept
	return SaveConfig(cfg)
}

// ParseGemsJSON parses the gem list as edited in a settings text area.
// The input must be a JSON array; entries are kept as written, so
// duplicates and names shadowed by built-ins survive and are resolved at
// selection time.
func ParseGemsJSON(data []byte) ([]models.SavedGem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("saved gems must be a JSON array")
	}

	var gems []models.SavedGem
	if err := json.Unmarshal(trimmed, &gems); err != nil {
		return nil, fmt.Errorf("invalid saved gems JSON: %w", err)
	}
	if gems == nil {
		gems = []models.SavedGem{}
	}
	return gems, nil
}

// SetGemsJSON replaces the saved gems with the parsed array. On error
// nothing is written and the previous list stays in effect.
func SetGemsJSON(data []byte) ([]models.SavedGem, error) {
	gems, err := ParseGemsJSON(data)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.SavedGems = gems
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return gems, nil
}

// GemsJSON returns the saved gems as an indented JSON array
func GemsJSON(gems []models.SavedGem) ([]byte, error) {
	if gems == nil {
		gems = []models.SavedGem{}
	}
	return json.MarshalIndent(gems, "", "  ")
}

// gemFile is the document shape accepted by yaml and toml imports
type gemFile struct {
	Gems []models.SavedGem `json:"gems" yaml:"gems" toml:"gems"`
}

// ReadGemsFile decodes gems from a .json, .yaml/.yml or .toml file.
// JSON may be a bare array or an object with a "gems" array; yaml may be a
// bare list or a "gems" key; toml uses [[gems]] tables.
func ReadGemsFile(path string) ([]models.SavedGem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gems file: %w", err)
	}

	var gems []models.SavedGem
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '[' {
			err = json.Unmarshal(t, &gems)
		} else {
			var doc gemFile
			err = json.Unmarshal(data, &doc)
			gems = doc.Gems
		}
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &gems); err != nil {
			var doc gemFile
			if yerr := yaml.Unmarshal(data, &doc); yerr == nil {
				gems, err = doc.Gems, nil
			}
		}
	case ".toml":
		var doc gemFile
		_, err = toml.Decode(string(data), &doc)
		gems = doc.Gems
	default:
		return nil, fmt.Errorf("unsupported gems file type %q (use .json, .yaml or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse gems file: %w", err)
	}

	for _, g := range gems {
		if err := ValidateGem(g); err != nil {
			return nil, fmt.Errorf("gem '%s': %w", g.Name, err)
		}
	}
	return gems, nil
}

// ImportResult summarizes an import
type ImportResult struct {
	Added   []string
	Updated []string
}

// ImportGems merges gems from a file into the saved list by name. Existing
// gems are updated in place, new ones appended in file order.
func ImportGems(path string) (*ImportResult, error) {
	incoming, err := ReadGemsFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, g := range incoming {
		if i := findGem(cfg.SavedGems, g.Name); i >= 0 {
			cfg.SavedGems[i] = g
			result.Updated = append(result.Updated, g.Name)
			continue
		}
		cfg.SavedGems = append(cfg.SavedGems, g)
		result.Added = append(result.Added, g.Name)
	}

	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return result, nil
}
