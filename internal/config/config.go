// Package config loads relfix.toml and merges it with built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jonseale44/Clarafi/internal/relation"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "relfix.toml"

// DefaultPath is the schema rewritten when no path is given.
const DefaultPath = "shared/schema.ts"

// DefaultJournalDir is relative to the manifest root (or the cwd without one).
const DefaultJournalDir = ".relfix/journal"

// DefaultJournalKeep is the number of backups kept per file.
const DefaultJournalKeep = 10

// DefaultFields lists the nullable foreign keys of the drizzle schema whose
// one() relations break the relational query builder.
var DefaultFields = []string{
	"encounterId",
	"appointmentId",
	"orderedBy",
	"prescriber",
	"labOrderId",
	"pharmacyId",
	"providerId",
	"locationId",
	"healthSystemId",
	"reviewedBy",
	"verifiedBy",
	"addedBy",
	"resolvedBy",
	"externalLabId",
	"attachmentId",
	"parentId",
	"userId",
	"electronicSignatureId",
	"medicationId",
	"preferredPharmacyId",
	"setBy",
	"examinedBy",
	"imagingOrderId",
	"lastUpdatedBy",
}

// DefaultKeys restricts matching to the `fields:` array of a relation config.
var DefaultKeys = []string{"fields"}

// Config is the decoded manifest after defaults are applied.
type Config struct {
	Targets TargetsConfig `toml:"targets"`
	Output  OutputConfig  `toml:"output"`
	Journal JournalConfig `toml:"journal"`
	Paths   []string      `toml:"paths"`

	// Path is the manifest file, empty when defaults are used.
	Path string `toml:"-"`
	// Root is the directory relative paths are resolved against.
	Root string `toml:"-"`
}

type TargetsConfig struct {
	Fields  []string `toml:"fields"`
	Callees []string `toml:"callees"`
	Keys    []string `toml:"keys"`
}

type OutputConfig struct {
	CommentMarker string `toml:"comment_marker"`
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	// Keep is how many entries are kept per file.
	Keep int `toml:"keep"`
}

// Default returns the built-in configuration rooted at root.
func Default(root string) Config {
	return Config{
		Targets: TargetsConfig{
			Fields:  append([]string(nil), DefaultFields...),
			Callees: append([]string(nil), relation.DefaultCallees...),
			Keys:    append([]string(nil), DefaultKeys...),
		},
		Output:  OutputConfig{CommentMarker: relation.DefaultMarker},
		Journal: JournalConfig{Dir: DefaultJournalDir, Keep: DefaultJournalKeep},
		Paths:   []string{DefaultPath},
		Root:    root,
	}
}

// Find walks up from startDir to locate relfix.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the manifest found from startDir, or the defaults rooted at
// startDir when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		return Default(root), nil
	}
	return Load(path)
}

// Load decodes path on top of the defaults. Keys missing from the file keep
// their default values; an explicitly empty list stays empty.
func Load(path string) (Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg := Default(filepath.Dir(abs))
	cfg.Path = abs

	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", abs, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", abs, err)
	}
	return cfg, nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if relation.NewFieldSet(c.Targets.Fields).Len() == 0 {
		return errors.New("[targets].fields must name at least one field")
	}
	if relation.NewFieldSet(c.Targets.Callees).Len() == 0 {
		return errors.New("[targets].callees must name at least one callee")
	}
	for _, callee := range c.Targets.Callees {
		if strings.ContainsAny(strings.TrimSpace(callee), " \t.()") {
			return fmt.Errorf("[targets].callees: %q is not an identifier", callee)
		}
	}
	marker := c.Output.CommentMarker
	if !strings.HasPrefix(marker, "//") || strings.ContainsAny(marker, "\r\n") {
		return fmt.Errorf("[output].comment_marker %q must be a single-line // comment prefix", marker)
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Dir) == "" {
		return errors.New("[journal].dir must be set when the journal is enabled")
	}
	if c.Journal.Keep < 1 {
		return fmt.Errorf("[journal].keep must be positive, got %d", c.Journal.Keep)
	}
	return nil
}

// FieldSet returns the configured targets as a relation.FieldSet.
func (c *Config) FieldSet() relation.FieldSet {
	return relation.NewFieldSet(c.Targets.Fields)
}

// JournalDir returns the journal directory resolved against Root.
func (c *Config) JournalDir() string {
	return c.Resolve(c.Journal.Dir)
}

// Resolve makes p absolute relative to Root.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// Encode writes c as TOML. Used by `relfix init`.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(c)
}
