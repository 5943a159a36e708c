package badger

import "fmt"

// Key prefixes for different data types
const (
	bookRecordPrefix = "bokrec"
	bookFieldPrefix  = "bokfld"
	dimensionKey     = "bokmeta:dim"
)

// fieldSep separates the indexed value from the document id in field index
// keys. Metadata values are cleaned text and never contain NUL, so the
// separator keeps "English" from matching a scan for "Englis".
const fieldSep = "\x00"

// makeBookRecordKey generates a key for a book record by ID.
func makeBookRecordKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", bookRecordPrefix, id))
}

// makeFieldKey generates a composite key for the metadata field index.
// Format: prefix:field:value\x00id
func makeFieldKey(field, value, id string) []byte {
	prefix := bookFieldPrefix + ":" + field + ":"
	totalSize := len(prefix) + len(value) + len(fieldSep) + len(id)
	buf := make([]byte, 0, totalSize)
	buf = append(buf, prefix...)
	buf = append(buf, value...)
	buf = append(buf, fieldSep...)
	buf = append(buf, id...)
	return buf
}

// makePartialFieldKey generates the scan prefix for all documents whose
// field exactly equals value.
// Format: prefix:field:value\x00
func makePartialFieldKey(field, value string) []byte {
	prefix := bookFieldPrefix + ":" + field + ":"
	totalSize := len(prefix) + len(value) + len(fieldSep)
	buf := make([]byte, 0, totalSize)
	buf = append(buf, prefix...)
	buf = append(buf, value...)
	buf = append(buf, fieldSep...)
	return buf
}
