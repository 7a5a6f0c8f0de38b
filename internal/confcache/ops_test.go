// ABOUTME: Tests for the cache's read and write operations.
// ABOUTME: Covers typed accessors, binary entries, removal, and iteration.

package confcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bondstore/internal/hexcodec"
)

func TestCache_IntRoundTrip(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, ok := c.GetInt("Adapter", "ScanMode")
	assert.False(t, ok)

	c.SetInt("Adapter", "ScanMode", 2)
	assert.True(t, c.HasSection("Adapter"))
	assert.True(t, c.HasEntry("Adapter", "ScanMode"))

	v, ok := c.GetInt("Adapter", "ScanMode")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCache_GetInt_UnparsableReportsMissing(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetString("Adapter", "ScanMode", "fast")
	_, ok := c.GetInt("Adapter", "ScanMode")
	assert.False(t, ok, "a value that does not parse should read as absent")
}

func TestCache_StringRoundTrip(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, ok := c.GetString("aa:bb:cc:dd:ee:ff", "Name")
	assert.False(t, ok)

	c.SetString("aa:bb:cc:dd:ee:ff", "Name", "Keyboard")
	v, ok := c.GetString("aa:bb:cc:dd:ee:ff", "Name")
	assert.True(t, ok)
	assert.Equal(t, "Keyboard", v)

	c.SetString("aa:bb:cc:dd:ee:ff", "Name", "Mouse")
	v, _ = c.GetString("aa:bb:cc:dd:ee:ff", "Name")
	assert.Equal(t, "Mouse", v, "setting an existing key should overwrite it")
}

func TestCache_KeysAreCaseSensitive(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetString("aa:bb:cc:dd:ee:ff", "LinkKey", "badc")
	assert.False(t, c.HasEntry("aa:bb:cc:dd:ee:ff", "linkkey"))
	assert.False(t, c.HasSection("AA:BB:CC:DD:EE:FF"))
}

func TestCache_BinaryRoundTrip(t *testing.T) {
	c, _, _ := newTestCache(t)

	key := []byte{0x01, 0x02, 0xab, 0xff}
	c.SetBinary("aa:bb:cc:dd:ee:ff", "LinkKey", key)

	// Stored as hex text with the low nibble first.
	stored, ok := c.GetString("aa:bb:cc:dd:ee:ff", "LinkKey")
	assert.True(t, ok)
	assert.Equal(t, "1020baff", stored)

	got, err := c.GetBinary("aa:bb:cc:dd:ee:ff", "LinkKey")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	assert.Equal(t, len(key), c.GetBinaryLength("aa:bb:cc:dd:ee:ff", "LinkKey"))
}

func TestCache_BinaryEmptyValue(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetBinary("aa:bb:cc:dd:ee:ff", "LinkKey", nil)

	stored, ok := c.GetString("aa:bb:cc:dd:ee:ff", "LinkKey")
	assert.True(t, ok)
	assert.Equal(t, "", stored)

	got, err := c.GetBinary("aa:bb:cc:dd:ee:ff", "LinkKey")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, c.GetBinaryLength("aa:bb:cc:dd:ee:ff", "LinkKey"))
}

func TestCache_GetBinary_Missing(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, err := c.GetBinary("aa:bb:cc:dd:ee:ff", "LinkKey")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_GetBinary_MalformedStoredText(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetString("aa:bb:cc:dd:ee:ff", "LinkKey", "12a")
	_, err := c.GetBinary("aa:bb:cc:dd:ee:ff", "LinkKey")
	assert.ErrorIs(t, err, hexcodec.ErrMalformed, "odd-length text must not decode")

	c.SetString("aa:bb:cc:dd:ee:ff", "LinkKey", "1g2h")
	_, err = c.GetBinary("aa:bb:cc:dd:ee:ff", "LinkKey")
	assert.ErrorIs(t, err, hexcodec.ErrMalformed)
}

func TestCache_GetBinaryLength_MalformedOrMissingIsZero(t *testing.T) {
	c, _, _ := newTestCache(t)

	assert.Equal(t, 0, c.GetBinaryLength("aa:bb:cc:dd:ee:ff", "LinkKey"))

	c.SetString("aa:bb:cc:dd:ee:ff", "LinkKey", "12a")
	assert.Equal(t, 0, c.GetBinaryLength("aa:bb:cc:dd:ee:ff", "LinkKey"))

	c.SetString("aa:bb:cc:dd:ee:ff", "LinkKey", "zz")
	assert.Equal(t, 0, c.GetBinaryLength("aa:bb:cc:dd:ee:ff", "LinkKey"))

	c.SetString("aa:bb:cc:dd:ee:ff", "LinkKey", "badc")
	assert.Equal(t, 2, c.GetBinaryLength("aa:bb:cc:dd:ee:ff", "LinkKey"))
}

func TestCache_RemoveEntry(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetString("aa:bb:cc:dd:ee:ff", "Name", "Keyboard")
	assert.True(t, c.RemoveEntry("aa:bb:cc:dd:ee:ff", "Name"))
	assert.False(t, c.RemoveEntry("aa:bb:cc:dd:ee:ff", "Name"), "removing twice should report false")
	assert.False(t, c.HasEntry("aa:bb:cc:dd:ee:ff", "Name"))

	assert.True(t, c.HasSection("aa:bb:cc:dd:ee:ff"), "removing the last key keeps the section")
}

func TestCache_RemoveSection(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetString("aa:bb:cc:dd:ee:ff", "Name", "Keyboard")
	c.SetString("aa:bb:cc:dd:ee:ff", "LinkKey", "badc")

	assert.True(t, c.RemoveSection("aa:bb:cc:dd:ee:ff"))
	assert.False(t, c.HasSection("aa:bb:cc:dd:ee:ff"))
	assert.False(t, c.RemoveSection("aa:bb:cc:dd:ee:ff"))
}

func TestCache_ForEachSection_OrderAndEarlyStop(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetInt("Adapter", "ScanMode", 2)
	c.SetString("aa:bb:cc:dd:ee:ff", "Name", "Keyboard")
	c.SetString("11:22:33:44:55:66", "Name", "Mouse")

	var names []string
	c.ForEachSection(func(name string) bool {
		names = append(names, name)
		return true
	})
	assert.Equal(t, []string{"Adapter", "aa:bb:cc:dd:ee:ff", "11:22:33:44:55:66"}, names)

	names = names[:0]
	c.ForEachSection(func(name string) bool {
		names = append(names, name)
		return len(names) < 2
	})
	assert.Len(t, names, 2)
}

func TestCache_SectionNames(t *testing.T) {
	c, _, _ := newTestCache(t)

	assert.Empty(t, c.SectionNames())

	c.SetInt("Adapter", "ScanMode", 2)
	c.SetString("aa:bb:cc:dd:ee:ff", "Name", "Keyboard")
	assert.Equal(t, []string{"Adapter", "aa:bb:cc:dd:ee:ff"}, c.SectionNames())
	assert.Equal(t, 2, c.SectionCount())
}

func TestCache_Keys(t *testing.T) {
	c, _, _ := newTestCache(t)

	assert.Nil(t, c.Keys("Adapter"))

	c.SetString("Adapter", "Address", "01:23:45:67:89:ab")
	c.SetInt("Adapter", "ScanMode", 2)
	assert.Equal(t, []string{"Address", "ScanMode"}, c.Keys("Adapter"))
}

func TestCache_DeviceType(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, ok := c.DeviceType("aa:bb:cc:dd:ee:ff")
	assert.False(t, ok)

	c.SetInt("aa:bb:cc:dd:ee:ff", "DevType", 2)
	v, ok := c.DeviceType("aa:bb:cc:dd:ee:ff")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCache_AddressType(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, ok := c.AddressType("aa:bb:cc:dd:ee:ff")
	assert.False(t, ok)

	c.SetInt("aa:bb:cc:dd:ee:ff", "AddrType", 1)
	v, ok := c.AddressType("aa:bb:cc:dd:ee:ff")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
