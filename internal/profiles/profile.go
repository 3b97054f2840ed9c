package profiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/ruminaider/toolkit/internal/paths"
)

// NoneLabel is displayed when no profile resolves.
const NoneLabel = "None"

var (
	ErrEmptyName     = errors.New("profile name is required")
	ErrDuplicateName = errors.New("profile name already exists")
	ErrNotFound      = errors.New("profile not found")
	ErrAmbiguous     = errors.New("profile reference is ambiguous")
)

// Profile is a client profile: a stable identifier plus display name.
type Profile struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// registryFile is the on-disk shape of profiles.yaml.
type registryFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Parse parses profiles.yaml bytes. File order is display order.
// Entries without an id are rejected, as are duplicate ids.
func Parse(data []byte) ([]Profile, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}

	seen := make(map[string]bool, len(f.Profiles))
	for i, p := range f.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("parsing profiles: entry %d has no id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parsing profiles: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	if f.Profiles == nil {
		return []Profile{}, nil
	}
	return f.Profiles, nil
}

// Marshal serializes profiles to profiles.yaml bytes.
func Marshal(set []Profile) ([]byte, error) {
	if set == nil {
		set = []Profile{}
	}
	return yaml.Marshal(registryFile{Profiles: set})
}

// Lookup returns the profile with the given id. An empty id never matches.
func Lookup(set []Profile, id string) (Profile, bool) {
	if id == "" {
		return Profile{}, false
	}
	for _, p := range set {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// DisplayName returns the name of the profile with the given id, or
// NoneLabel when the id is absent or no longer in the set.
func DisplayName(set []Profile, id string) string {
	if p, ok := Lookup(set, id); ok {
		return p.Name
	}
	return NoneLabel
}

// CheckName reports whether name can be used for a new profile in set.
// Names are compared trimmed and case-insensitively.
func CheckName(set []Profile, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	for _, p := range set {
		if strings.EqualFold(p.Name, name) {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	return nil
}

// Registry is the file-backed set of client profiles.
type Registry struct {
	mu       sync.RWMutex
	path     string
	profiles []Profile
}

// LoadRegistry reads the registry at path. A missing file is an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistry returns a registry holding set. Nothing is written until the
// first Create or Remove.
func NewRegistry(path string, set []Profile) *Registry {
	cp := make([]Profile, len(set))
	copy(cp, set)
	return &Registry{path: path, profiles: cp}
}

// Path returns the file backing the registry.
func (r *Registry) Path() string {
	return r.path
}

// Profiles returns a copy of the current profile set in display order.
func (r *Registry) Profiles() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]Profile, len(r.profiles))
	copy(cp, r.profiles)
	return cp
}

// Reload re-reads the registry file.
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.mu.Lock()
			r.profiles = []Profile{}
			r.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading profiles: %w", err)
	}

	set, err := Parse(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.profiles = set
	r.mu.Unlock()
	return nil
}

// Create appends a profile with a fresh id and persists the registry.
func (r *Registry) Create(name string) (Profile, error) {
	name = strings.TrimSpace(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := CheckName(r.profiles, name); err != nil {
		return Profile{}, err
	}

	p := Profile{ID: uuid.NewString(), Name: name}
	next := append(append([]Profile{}, r.profiles...), p)
	if err := writeRegistry(r.path, next); err != nil {
		return Profile{}, err
	}
	r.profiles = next
	return p, nil
}

// Remove deletes the profile with the given id and persists the registry.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]Profile, 0, len(r.profiles))
	found := false
	for _, p := range r.profiles {
		if p.ID == id {
			found = true
			continue
		}
		next = append(next, p)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	if err := writeRegistry(r.path, next); err != nil {
		return err
	}
	r.profiles = next
	return nil
}

// Find resolves ref to a profile: exact id first, then a unique id prefix,
// then a case-insensitive name.
func (r *Registry) Find(ref string) (Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Profile{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	set := r.Profiles()
	if p, ok := Lookup(set, ref); ok {
		return p, nil
	}

	var matches []Profile
	for _, p := range set {
		if strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
	default:
		return Profile{}, fmt.Errorf("%w: %q matches %d ids", ErrAmbiguous, ref, len(matches))
	}

	for _, p := range set {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
}

func writeRegistry(path string, set []Profile) error {
	data, err := Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating profiles dir: %w", err)
	}

	// Write then rename so watchers never observe a half-written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	return nil
}

// ReadActiveProfile reads the active-profile file from dir.
// Returns "" and nil error if the file doesn't exist.
func ReadActiveProfile(dir string) (string, error) {
	data, err := os.ReadFile(paths.ActiveProfileFileIn(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading active profile: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteActiveProfile writes the profile id to the active-profile file in
// dir. The file is replaced by rename, so a concurrent reader sees either
// the previous id or the new one, never an empty file.
func WriteActiveProfile(dir, id string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("writing active profile: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".active-profile-*")
	if err != nil {
		return fmt.Errorf("writing active profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(id + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("writing active profile: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing active profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing active profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), paths.ActiveProfileFileIn(dir)); err != nil {
		return fmt.Errorf("writing active profile: %w", err)
	}
	return nil
}

// DeleteActiveProfile removes the active-profile file. No error if it doesn't exist.
func DeleteActiveProfile(dir string) error {
	err := os.Remove(paths.ActiveProfileFileIn(dir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting active profile: %w", err)
	}
	return nil
}
