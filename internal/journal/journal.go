// Package journal keeps a msgpack backup of every file relfix rewrites so that
// a run can be undone with `relfix restore`.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

const entryExt = ".mp"

var (
	// ErrNoEntry is returned when the journal holds nothing for a path.
	ErrNoEntry = errors.New("no journal entry")
	// ErrModified is returned by Restore when the file changed after the
	// recorded rewrite.
	ErrModified = errors.New("file was modified after the recorded rewrite")
)

// Entry is one recorded rewrite.
type Entry struct {
	Schema uint16
	// Path is the absolute path of the rewritten file.
	Path       string
	Time       time.Time
	Before     []byte
	BeforeHash [32]byte
	AfterHash  [32]byte
	Mode       uint32
	Fields     []string // fields that were disabled
	Matched    int

	file string // journal file holding the entry
}

// Journal stores entries under dir, one subdirectory per rewritten file.
// Thread-safe for concurrent access.
type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// Open creates dir if needed and returns a journal rooted there.
func Open(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return &Journal{dir: dir, now: time.Now}, nil
}

// Dir returns the journal root.
func (j *Journal) Dir() string {
	return j.dir
}

func (j *Journal) dirFor(path string) string {
	sum := sha256.Sum256([]byte(path))
	// короткий префикс хеша достаточно уникален для каталога
	return filepath.Join(j.dir, hex.EncodeToString(sum[:8]))
}

// Record stores e. Path is made absolute; Time and Schema are filled in.
func (j *Journal) Record(e *Entry) error {
	if j == nil {
		return nil
	}
	abs, err := filepath.Abs(e.Path)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	e.Path = abs
	e.Schema = schemaVersion
	if e.Time.IsZero() {
		e.Time = j.now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	dir := j.dirFor(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		_ = f.Close()
		return fmt.Errorf("journal: encode %s: %w", abs, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	name := filepath.Join(dir, fmt.Sprintf("%020d%s", e.Time.UnixNano(), entryExt))
	// Атомарная замена
	if err := os.Rename(tmp, name); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	e.file = name
	return nil
}

// Entries returns the entries recorded for path, oldest first.
func (j *Journal) Entries(path string) ([]*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.entries(abs)
}

func (j *Journal) entries(abs string) ([]*Entry, error) {
	dir := j.dirFor(abs)
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal: %w", err)
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.IsDir() || !strings.HasSuffix(it.Name(), entryExt) {
			continue
		}
		names = append(names, it.Name())
	}
	sort.Strings(names)

	out := make([]*Entry, 0, len(names))
	for _, name := range names {
		e, err := readEntry(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if e.Schema != schemaVersion || e.Path != abs {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func readEntry(name string) (*Entry, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	defer f.Close()
	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, fmt.Errorf("journal: decode %s: %w", name, err)
	}
	e.file = name
	return &e, nil
}

// Latest returns the newest entry for path or ErrNoEntry.
func (j *Journal) Latest(path string) (*Entry, error) {
	entries, err := j.Entries(path)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoEntry, path)
	}
	return entries[len(entries)-1], nil
}

// Restore puts back the content recorded by the newest entry for path using
// write, then drops that entry. Unless force is set, the file on disk must
// still be the one the entry produced.
func (j *Journal) Restore(path string, force bool, write func(path string, data []byte) error) (*Entry, error) {
	e, err := j.Latest(path)
	if err != nil {
		return nil, err
	}
	if !force {
		current, err := os.ReadFile(e.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("journal: %w", err)
		}
		if err != nil || sha256.Sum256(current) != e.AfterHash {
			return nil, fmt.Errorf("%w: %s", ErrModified, e.Path)
		}
	}
	if err := write(e.Path, e.Before); err != nil {
		return nil, err
	}
	if e.Mode != 0 {
		_ = os.Chmod(e.Path, os.FileMode(e.Mode).Perm())
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := os.Remove(e.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return e, fmt.Errorf("journal: %w", err)
	}
	return e, nil
}

// Prune keeps the newest keep entries for path and deletes the rest.
func (j *Journal) Prune(path string, keep int) (int, error) {
	entries, err := j.Entries(path)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for i := 0; i < len(entries)-keep; i++ {
		if err := os.Remove(entries[i].file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("journal: %w", err)
		}
		removed++
	}
	return removed, nil
}
