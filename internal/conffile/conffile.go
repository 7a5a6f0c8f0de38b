// ABOUTME: Ordered section/key/value settings file: parse, mutate, serialize.
// ABOUTME: Backs the settings cache; insertion order is preserved and observable.

package conffile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxLine bounds a single key/value line. Values are hex-encoded blobs at
// most a few hundred bytes in practice; 1 MiB leaves generous headroom.
const maxLine = 1 << 20

// File is an ordered mapping from section name to an ordered mapping from
// key to string value. It is not safe for concurrent use; the owning cache
// serializes access.
type File struct {
	sections []*section
	index    map[string]*section
}

type section struct {
	name    string
	entries []*entry
	index   map[string]*entry
}

type entry struct {
	key   string
	value string
}

// New returns an empty File.
func New() *File {
	return &File{index: make(map[string]*section)}
}

// Load reads and parses the settings file at path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening settings file: %w", err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse reads a settings file from r. Malformed lines are skipped.
func Parse(r io.Reader) (*File, error) {
	f := New()
	var current *section

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue

		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				current = nil
				continue
			}
			current = f.getOrCreate(name)

		default:
			eq := strings.IndexByte(line, '=')
			if eq < 0 || current == nil {
				continue
			}
			key := strings.TrimSpace(line[:eq])
			if key == "" {
				continue
			}
			current.set(key, strings.TrimSpace(line[eq+1:]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return f, nil
}

// HasSection reports whether a section with the given name exists.
func (f *File) HasSection(name string) bool {
	_, ok := f.index[name]
	return ok
}

// HasKey reports whether the section exists and contains key.
func (f *File) HasKey(sectionName, key string) bool {
	s, ok := f.index[sectionName]
	if !ok {
		return false
	}
	_, ok = s.index[key]
	return ok
}

// GetString returns the stored value, reporting whether it exists.
func (f *File) GetString(sectionName, key string) (string, bool) {
	s, ok := f.index[sectionName]
	if !ok {
		return "", false
	}
	e, ok := s.index[key]
	if !ok {
		return "", false
	}
	return e.value, true
}

// GetInt returns the stored value parsed as an integer. A value that exists
// but does not parse reports false, same as an absent one.
func (f *File) GetInt(sectionName, key string) (int, bool) {
	v, ok := f.GetString(sectionName, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetString stores value under section/key, creating both as needed.
// An existing key keeps its position; new sections and keys append.
func (f *File) SetString(sectionName, key, value string) {
	f.getOrCreate(sectionName).set(key, value)
}

// SetInt stores value's decimal representation under section/key.
func (f *File) SetInt(sectionName, key string, value int) {
	f.SetString(sectionName, key, strconv.Itoa(value))
}

// RemoveSection deletes a whole section. It reports whether one was removed.
func (f *File) RemoveSection(name string) bool {
	s, ok := f.index[name]
	if !ok {
		return false
	}
	delete(f.index, name)
	for i, sec := range f.sections {
		if sec == s {
			f.sections = append(f.sections[:i], f.sections[i+1:]...)
			break
		}
	}
	return true
}

// RemoveKey deletes a single entry. Removing a section's last entry keeps
// the now-empty section. It reports whether an entry was removed.
func (f *File) RemoveKey(sectionName, key string) bool {
	s, ok := f.index[sectionName]
	if !ok {
		return false
	}
	e, ok := s.index[key]
	if !ok {
		return false
	}
	delete(s.index, key)
	for i, ent := range s.entries {
		if ent == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	return true
}

// SectionCount returns the number of sections.
func (f *File) SectionCount() int {
	return len(f.sections)
}

// Len returns the number of entries in a section, 0 if it does not exist.
func (f *File) Len(sectionName string) int {
	s, ok := f.index[sectionName]
	if !ok {
		return 0
	}
	return len(s.entries)
}

// Keys returns the section's key names in store order, nil if the section
// does not exist.
func (f *File) Keys(sectionName string) []string {
	s, ok := f.index[sectionName]
	if !ok {
		return nil
	}
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

// ForEachSection calls fn for each section name in store order until fn
// returns false. Sections must not be removed during the walk.
func (f *File) ForEachSection(fn func(name string) bool) {
	for _, s := range f.sections {
		if !fn(s.name) {
			return
		}
	}
}

// Sections returns a forward-only cursor over section names in store order.
//
// The cursor is a live view: removing sections while iterating invalidates
// it. Name is valid only after a Next call that returned true.
func (f *File) Sections() *SectionIter {
	return &SectionIter{f: f}
}

// SectionIter walks sections in store order.
type SectionIter struct {
	f   *File
	pos int
}

// Next advances to the next section. It returns false once the cursor moves
// past the last section.
func (it *SectionIter) Next() bool {
	if it.pos >= len(it.f.sections) {
		return false
	}
	it.pos++
	return true
}

// Name returns the current section's name.
func (it *SectionIter) Name() string {
	return it.f.sections[it.pos-1].name
}

// WriteTo serializes the file in store order: a [section] header, one
// "key = value" line per entry, and a blank line after each section.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, s := range f.sections {
		m, err := fmt.Fprintf(w, "[%s]\n", s.name)
		n += int64(m)
		if err != nil {
			return n, err
		}
		for _, e := range s.entries {
			m, err = fmt.Fprintf(w, "%s = %s\n", e.key, e.value)
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
		m, err = io.WriteString(w, "\n")
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Save atomically writes the serialized file to path: temp file in the same
// directory, fsync, rename. Parent directories are created if needed.
func (f *File) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp := path + ".tmp"
	fh, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}

	w := bufio.NewWriter(fh)
	if _, err := f.WriteTo(w); err != nil {
		fh.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := w.Flush(); err != nil {
		fh.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := fh.Sync(); err != nil {
		fh.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing settings: %w", err)
	}
	if err := fh.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}

func (f *File) getOrCreate(name string) *section {
	if s, ok := f.index[name]; ok {
		return s
	}
	s := &section{name: name, index: make(map[string]*entry)}
	f.sections = append(f.sections, s)
	f.index[name] = s
	return s
}

func (s *section) set(key, value string) {
	if e, ok := s.index[key]; ok {
		e.value = value
		return
	}
	e := &entry{key: key, value: value}
	s.entries = append(s.entries, e)
	s.index[key] = e
}
