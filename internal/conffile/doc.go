// Package conffile implements the ordered section/key/value text file that
// backs the settings cache.
//
// # Format
//
// The on-disk form is a simple sectioned key/value layout:
//
//	[Adapter]
//	Address = 01:23:45:67:89:ab
//	Name = living-room
//
//	[aa:bb:cc:dd:ee:ff]
//	DevType = 2
//	LinkKey = badc0ffee...
//
// Lines are parsed after trimming surrounding whitespace. Blank lines and
// lines starting with '#' are ignored. A key/value line splits on the first
// '='; empty values are legal. Malformed lines and entries appearing before
// any section header are skipped, never fatal.
//
// # Ordering
//
// Sections and the keys within them keep insertion order, and that order is
// observable: Sections returns a forward-only cursor over sections in store
// order, and serialization writes them back in the same order. Updating an
// existing key keeps its position.
//
// # Persistence
//
// Save writes the serialized file to a temp file in the target directory,
// fsyncs, then renames it over the destination, so a crash never leaves a
// half-written settings file. Files are created 0600: link keys live here.
package conffile
