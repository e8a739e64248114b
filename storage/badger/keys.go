package badger

import (
	"encoding/binary"
	"time"
)

// Key prefixes for different data types
const (
	taskPrefix        = "task:"
	taskCreatedPrefix = "taskc:"
	notePrefix        = "note:"
	noteCreatedPrefix = "notec:"
)

// makeRecordKey generates the primary key for a record.
// Format: prefix id
func makeRecordKey(prefix, id string) []byte {
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}

// makeCreatedKey generates a composite key for the creation-order index.
// Format: prefix timestamp id
func makeCreatedKey(prefix string, created time.Time, id string) []byte {
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(created.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}
