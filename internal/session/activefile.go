package session

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ruminaider/toolkit/internal/paths"
	"github.com/ruminaider/toolkit/internal/profiles"
)

// ActiveFile is the active-profile file in a toolkit dir, shared by
// Persist and the Watcher of one process. It remembers the last id it
// wrote or read so the watcher never feeds this process's own writes
// back into the store.
type ActiveFile struct {
	mu    sync.Mutex
	dir   string
	last  string
	known bool
}

// NewActiveFile returns the active-profile file in dir. Nothing is read
// until Load or Sync.
func NewActiveFile(dir string) *ActiveFile {
	return &ActiveFile{dir: dir}
}

// Dir returns the directory holding the file.
func (f *ActiveFile) Dir() string {
	return f.dir
}

// Path returns the file path.
func (f *ActiveFile) Path() string {
	return paths.ActiveProfileFileIn(f.dir)
}

// Load reads the current id, "" when the file is absent.
func (f *ActiveFile) Load() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, err := profiles.ReadActiveProfile(f.dir)
	if err != nil {
		return "", err
	}
	f.last, f.known = id, true
	return id, nil
}

// Write stores id, removing the file for "". It is a no-op when the file
// is already known to hold id.
func (f *ActiveFile) Write(id string) error {
	_, err := f.writeLatest(func() string { return id })
	return err
}

// writeLatest writes the value current returns, evaluated under the file
// lock. Subscribers run outside the store lock and may arrive out of
// order; reading the value here keeps the last write equal to the
// store's latest value.
func (f *ActiveFile) writeLatest(current func() string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := current()
	if f.known && f.last == id {
		return id, nil
	}
	var err error
	if id == "" {
		err = profiles.DeleteActiveProfile(f.dir)
	} else {
		err = profiles.WriteActiveProfile(f.dir, id)
	}
	if err != nil {
		return id, err
	}
	f.last, f.known = id, true
	return id, nil
}

// Sync re-reads the file and reports whether it holds something other
// than what this process last wrote or read. An existing but empty file
// is another writer's truncate in progress and is not reported.
func (f *ActiveFile) Sync() (id string, changed bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.Path())
	switch {
	case os.IsNotExist(err):
		id = ""
	case err != nil:
		return "", false, fmt.Errorf("reading active profile: %w", err)
	default:
		id = strings.TrimSpace(string(data))
		if id == "" {
			return "", false, nil
		}
	}

	if f.known && f.last == id {
		return id, false, nil
	}
	f.last, f.known = id, true
	return id, true, nil
}
