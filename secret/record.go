package secret

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrFormat is returned by DecodeRecord when a plaintext entry is malformed.
var ErrFormat = errors.New("malformed entry")

// A Record is a single key/value secret.
type Record struct {
	Key   string
	Value string
}

// EncodeRecord serializes a key/value pair as
//
//	<len(key)> <len(value)> <key> <value>
//
// Both fields are trimmed before their byte lengths are taken, so the value
// may carry interior spaces and newlines.
func EncodeRecord(key, value string) []byte {
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	var buf bytes.Buffer
	buf.Grow(len(key) + len(value) + 24)
	buf.WriteString(strconv.Itoa(len(key)))
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(len(value)))
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte(' ')
	buf.WriteString(value)
	return buf.Bytes()
}

var reRecordHeader = regexp.MustCompile(`^(\d+) (\d+) `)

// DecodeRecord parses a plaintext produced by EncodeRecord. Fields are sliced
// by their declared lengths, never by the separator.
func DecodeRecord(b []byte) (Record, error) {
	m := reRecordHeader.FindSubmatch(b)
	if m == nil {
		return Record{}, errors.Wrap(ErrFormat, "missing length header")
	}
	keyLen, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return Record{}, errors.Wrap(ErrFormat, "invalid key length")
	}
	valueLen, err := strconv.Atoi(string(m[2]))
	if err != nil {
		return Record{}, errors.Wrap(ErrFormat, "invalid value length")
	}
	payload := b[len(m[0]):]
	if keyLen > len(payload) || valueLen > len(payload) || keyLen+1+valueLen > len(payload) {
		return Record{}, errors.Wrapf(ErrFormat,
			"declared lengths %d+%d overrun payload of %d bytes", keyLen, valueLen, len(payload))
	}
	return Record{
		Key:   strings.TrimSpace(string(payload[:keyLen])),
		Value: strings.TrimSpace(string(payload[keyLen+1 : keyLen+1+valueLen])),
	}, nil
}
