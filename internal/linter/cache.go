package linter

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"krait/internal/diag"
	"krait/internal/settings"
	"krait/internal/source"
	"krait/internal/version"
)

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// Cache stores finalized diagnostics per file content on disk.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema      uint16
	Path        string
	Diagnostics []diag.Diagnostic
	Suppressed  int
}

// OpenCache opens the cache under dir, or under $XDG_CACHE_HOME/krait
// (~/.cache/krait) when dir is empty.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "krait")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// Key derives the cache key of file under s. The frontend is part of the
// key since the same bytes lint differently as Python and Starlark.
func Key(file *source.File, s *settings.Settings) [32]byte {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], cacheSchemaVersion)
	h.Write(schema[:])
	h.Write([]byte(version.Version))
	h.Write([]byte{0})
	h.Write([]byte(frontendFor(file.Path).dialect))
	h.Write([]byte{0})
	h.Write([]byte(s.Fingerprint()))
	h.Write([]byte{0})
	h.Write(file.Hash[:])
	var key [32]byte
	h.Sum(key[:0])
	return key
}

func (c *Cache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// первые два символа ключа задают подкаталог
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// put writes the payload atomically through a temp file.
func (c *Cache) put(key [32]byte, payload *cachePayload) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

func (c *Cache) get(key [32]byte) (*cachePayload, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()
	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}

// lookup returns a cached result for file, rebound to the file's ID.
// Unreadable entries count as misses.
func (c *Cache) lookup(file *source.File, s *settings.Settings) (*FileResult, bool) {
	if c == nil {
		return nil, false
	}
	payload, ok, err := c.get(Key(file, s))
	if err != nil || !ok {
		return nil, false
	}
	for i := range payload.Diagnostics {
		rebind(&payload.Diagnostics[i], file.ID)
	}
	return &FileResult{
		Path:        file.Path,
		File:        file,
		Diagnostics: payload.Diagnostics,
		Suppressed:  payload.Suppressed,
		Cached:      true,
	}, true
}

// store records a result. Results with rule faults are not cached so the
// fault is reported again on the next run.
func (c *Cache) store(r *FileResult, s *settings.Settings) error {
	if c == nil || len(r.Faults) > 0 {
		return nil
	}
	return c.put(Key(r.File, s), &cachePayload{
		Schema:      cacheSchemaVersion,
		Path:        r.Path,
		Diagnostics: r.Diagnostics,
		Suppressed:  r.Suppressed,
	})
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}

// rebind points every span of d at file; IDs are per run.
func rebind(d *diag.Diagnostic, file source.FileID) {
	d.Span.File = file
	for i := range d.Notes {
		d.Notes[i].Span.File = file
	}
	if d.Fix != nil {
		for i := range d.Fix.Edits {
			d.Fix.Edits[i].Span.File = file
		}
	}
}
