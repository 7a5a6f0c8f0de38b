// ABOUTME: Backend abstracts the section/key store the cache operates on.
// ABOUTME: conffile.File is the production implementation; tests inject a mock.

package confcache

import "github.com/2389/bondstore/internal/conffile"

// Backend is the store a Cache operates on. The cache serializes all
// calls behind its own mutex, so implementations do not need to be safe
// for concurrent use.
type Backend interface {
	HasSection(section string) bool
	HasKey(section, key string) bool
	GetString(section, key string) (string, bool)
	SetString(section, key, value string)
	GetInt(section, key string) (int, bool)
	SetInt(section, key string, value int)
	RemoveSection(section string) bool
	RemoveKey(section, key string) bool
	ForEachSection(fn func(name string) bool)
	SectionCount() int
	Keys(section string) []string
	Save(path string) error
}

var _ Backend = (*conffile.File)(nil)
