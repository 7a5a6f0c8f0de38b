// ABOUTME: Read and write operations on the cached settings store.
// ABOUTME: Every method takes the store mutex; none performs I/O.

package confcache

import (
	"fmt"

	"github.com/2389/bondstore/internal/hexcodec"
)

// Per-device entries consulted by the pairing path.
const (
	keyDevType  = "DevType"
	keyAddrType = "AddrType"
)

// HasSection reports whether a section exists.
func (c *Cache) HasSection(section string) bool {
	if section == "" {
		panic("confcache: empty section name")
	}
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.HasSection(section)
}

// HasEntry reports whether a key exists within a section.
func (c *Cache) HasEntry(section, key string) bool {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.HasKey(section, key)
}

// GetInt returns the entry parsed as a decimal integer. An entry that is
// missing or does not parse reports false.
func (c *Cache) GetInt(section, key string) (int, bool) {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.GetInt(section, key)
}

// SetInt stores value as a decimal string, creating the section and key
// as needed.
func (c *Cache) SetInt(section, key string, value int) {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.file.SetInt(section, key, value)
}

// GetString returns the entry's raw string value.
func (c *Cache) GetString(section, key string) (string, bool) {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.GetString(section, key)
}

// SetString stores value, creating the section and key as needed.
func (c *Cache) SetString(section, key, value string) {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.file.SetString(section, key, value)
}

// GetBinary decodes the entry's hex text into bytes. A missing entry
// reports ErrNotFound; stored text that is not valid hex reports
// hexcodec.ErrMalformed. Both are wrapped and match with errors.Is.
func (c *Cache) GetBinary(section, key string) ([]byte, error) {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	value, ok := c.file.GetString(section, key)
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", section, key, ErrNotFound)
	}
	decoded, err := hexcodec.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", section, key, err)
	}
	return decoded, nil
}

// GetBinaryLength reports the decoded byte length of the entry, or 0 if
// the entry is missing or its text is not valid hex.
func (c *Cache) GetBinaryLength(section, key string) int {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	value, ok := c.file.GetString(section, key)
	c.mu.Unlock()

	if !ok {
		return 0
	}
	n, err := hexcodec.DecodedLen(value)
	if err != nil {
		return 0
	}
	return n
}

// SetBinary hex-encodes value and stores it, creating the section and
// key as needed. An empty value stores an empty string.
func (c *Cache) SetBinary(section, key string, value []byte) {
	mustName(section, key)
	c.mustNotBeClosed()

	encoded := hexcodec.Encode(value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.file.SetString(section, key, encoded)
}

// RemoveEntry deletes a key from a section, reporting whether it
// existed. Removing the last key leaves the section in place.
func (c *Cache) RemoveEntry(section, key string) bool {
	mustName(section, key)
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.RemoveKey(section, key)
}

// RemoveSection deletes a section and all its entries, reporting whether
// it existed.
func (c *Cache) RemoveSection(section string) bool {
	if section == "" {
		panic("confcache: empty section name")
	}
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.RemoveSection(section)
}

// ForEachSection calls fn with each section name in file order until fn
// returns false. The store mutex is held for the duration, so fn must
// not call back into the cache.
func (c *Cache) ForEachSection(fn func(name string) bool) {
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.file.ForEachSection(fn)
}

// SectionNames returns a snapshot of all section names in file order.
func (c *Cache) SectionNames() []string {
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, c.file.SectionCount())
	c.file.ForEachSection(func(name string) bool {
		names = append(names, name)
		return true
	})
	return names
}

// SectionCount reports the number of sections in the store.
func (c *Cache) SectionCount() int {
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.SectionCount()
}

// Keys returns the key names of a section in file order, or nil if the
// section does not exist.
func (c *Cache) Keys(section string) []string {
	if section == "" {
		panic("confcache: empty section name")
	}
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Keys(section)
}

// DeviceType returns the stored device type for a device section.
func (c *Cache) DeviceType(addr string) (int, bool) {
	value, ok := c.GetInt(addr, keyDevType)
	if ok {
		c.log.Debug("device type", "addr", addr, "type", value)
	}
	return value, ok
}

// AddressType returns the stored address type for a device section.
func (c *Cache) AddressType(addr string) (int, bool) {
	value, ok := c.GetInt(addr, keyAddrType)
	if ok {
		c.log.Debug("address type", "addr", addr, "type", value)
	}
	return value, ok
}
