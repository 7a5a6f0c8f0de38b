// Package transcode reads the legacy XML settings format and converts it
// into the line-oriented store used everywhere else.
//
// It exists for one migration path: when the canonical settings file is
// missing or unreadable at startup, the cache falls back to the legacy XML
// file, transcodes it, and persists the result in the canonical format.
// Nothing ever writes XML.
package transcode
