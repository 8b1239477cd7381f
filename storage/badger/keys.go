package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	indexPrefix       = "idx"
	indexManifestKey  = "idx:man"
	indexEntryPrefix  = "idx:ent:"
	entryPositionSize = 8
)

// makeEntryKey generates a key for the entry at a build position.
// Format: prefix:position
func makeEntryKey(position int) []byte {
	buf := make([]byte, len(indexEntryPrefix)+entryPositionSize)
	offset := copy(buf, indexEntryPrefix)
	// Write in BigEndian order so lexicographic sort matches build order
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

// parseEntryKey extracts the build position from an entry key.
func parseEntryKey(key []byte) (int, error) {
	if len(key) != len(indexEntryPrefix)+entryPositionSize || string(key[:len(indexEntryPrefix)]) != indexEntryPrefix {
		return 0, fmt.Errorf("malformed entry key %q", key)
	}
	return int(binary.BigEndian.Uint64(key[len(indexEntryPrefix):])), nil
}
