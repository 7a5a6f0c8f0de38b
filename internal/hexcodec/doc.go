// Package hexcodec converts binary settings values to and from the hex text
// form used in the persisted store.
//
// The encoding is not standard hex: each byte is written low nibble first,
// matching the historical on-disk format. Decode mirrors Encode exactly, so
// Decode(Encode(b)) == b for every byte sequence b, including the empty one.
// encoding/hex writes the high nibble first and cannot read or produce these
// values.
package hexcodec
