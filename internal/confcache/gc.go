// ABOUTME: Garbage collection of stale device sections during timed flushes.
// ABOUTME: Sections holding bond material are never evicted.

package confcache

// bondKeys are the entries whose presence marks a device section as
// bonded. Inquiry scans cache metadata for devices that never pair, and
// those sections are the ones garbage collection is allowed to evict.
var bondKeys = [...]string{
	"LinkKey",
	"LE_KEY_PENC",
	"LE_KEY_PID",
	"LE_KEY_PCSRK",
	"LE_KEY_LENC",
	"LE_KEY_LCSRK",
}

// IsDeviceSection reports whether name is a device address of the form
// aa:bb:cc:dd:ee:ff. Dashes are accepted in place of colons, but the
// separator must be consistent.
func IsDeviceSection(name string) bool {
	if len(name) != 17 {
		return false
	}
	sep := name[2]
	if sep != ':' && sep != '-' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if i%3 == 2 {
			if name[i] != sep {
				return false
			}
			continue
		}
		if !isHexDigit(name[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

// IsBondKey reports whether key names bond material. Tools use this to
// avoid printing credentials.
func IsBondKey(key string) bool {
	for _, k := range bondKeys {
		if key == k {
			return true
		}
	}
	return false
}

// Bonded reports whether a section holds bond material for its device.
func (c *Cache) Bonded(section string) bool {
	if section == "" {
		panic("confcache: empty section name")
	}
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bondedLocked(section)
}

func (c *Cache) bondedLocked(section string) bool {
	for _, key := range bondKeys {
		if c.file.HasKey(section, key) {
			return true
		}
	}
	return false
}

// gcLocked evicts stale device sections and reports how many went. The
// store accumulates sections for remote devices seen during inquiry
// scans; without this the file would grow indefinitely. A sweep tracks
// at most gcCap eviction candidates, counts every unbonded device
// section, and evicts the tracked ones only when the total crosses twice
// the capacity. Bonded sections are never candidates. Callers hold c.mu.
func (c *Cache) gcLocked() int {
	tracked := make([]string, 0, c.gcCap)
	total := 0

	c.file.ForEachSection(func(name string) bool {
		if !IsDeviceSection(name) {
			return true
		}
		if c.bondedLocked(name) {
			return true
		}
		if len(tracked) < c.gcCap {
			tracked = append(tracked, name)
		}
		total++
		return true
	})

	if total <= c.gcCap*2 {
		return 0
	}
	for _, name := range tracked {
		c.file.RemoveSection(name)
	}
	return len(tracked)
}
