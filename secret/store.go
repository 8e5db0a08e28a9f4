package secret

import (
	"encoding/hex"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/e-XpertSolutions/go-secret/internal/logging"
)

var storeLog = logging.ForComponent(logging.CompStore)

// ErrOutOfRange is returned when a Position does not address a record.
var ErrOutOfRange = errors.New("position out of range")

// Position is the offset of a record in the store, in file order.
type Position int

// A Store holds the decrypted records of a store file in file order.
//
// Every entry of the file is encrypted on its own, so a corrupted entry or an
// entry written with another passphrase only costs that entry: it is skipped
// when loading and accounted for in SuccessRatio. Such entries are kept
// verbatim and written back on Save.
//
// A Store is not safe for concurrent use.
type Store struct {
	f      *file
	cipher *Cipher

	records    []Record
	unreadable []string
	attempted  int
}

// OpenStore loads the store file located at path with the given cipher. It
// only fails when the file itself cannot be read.
func OpenStore(path string, c *Cipher) (*Store, error) {
	s := &Store{f: newFile(path), cipher: c}
	if err := s.Load(); err != nil {
		return nil, errors.Wrap(err, "cannot open secret store")
	}
	return s, nil
}

// Load replaces the records with the content of the store file.
func (s *Store) Load() error {
	tokens, err := s.f.readTokens()
	if err != nil {
		return err
	}
	records := make([]Record, 0, len(tokens))
	var unreadable []string
	for i, token := range tokens {
		r, err := s.decodeToken(token)
		if err != nil {
			storeLog.Debug("skipping unreadable entry",
				slog.String("path", s.f.path),
				slog.Int("token", i),
				slog.String("error", err.Error()))
			unreadable = append(unreadable, token)
			continue
		}
		records = append(records, r)
	}
	s.records = records
	s.unreadable = unreadable
	s.attempted = len(tokens)
	storeLog.Debug("store loaded",
		slog.String("path", s.f.path),
		slog.Int("records", len(records)),
		slog.Int("unreadable", len(unreadable)))
	return nil
}

func (s *Store) decodeToken(token string) (Record, error) {
	blob, err := hex.DecodeString(token)
	if err != nil {
		return Record{}, errors.Wrap(ErrFormat, "invalid hex token")
	}
	plaintext, err := s.cipher.Decrypt(blob)
	if err != nil {
		return Record{}, err
	}
	return DecodeRecord(plaintext)
}

// Save encrypts every record again and rewrites the store file.
func (s *Store) Save() error {
	blobs := make([][]byte, 0, len(s.records)+len(s.unreadable))
	for _, r := range s.records {
		blob, err := s.cipher.Encrypt(EncodeRecord(r.Key, r.Value))
		if err != nil {
			return errors.Wrap(err, "cannot save secret store")
		}
		blobs = append(blobs, blob)
	}
	for _, token := range s.unreadable {
		blob, err := hex.DecodeString(token)
		if err != nil {
			// Not hex: nothing worth keeping.
			continue
		}
		blobs = append(blobs, blob)
	}
	if err := s.f.writeBlobs(blobs); err != nil {
		return errors.Wrap(err, "cannot save secret store")
	}
	return nil
}

// Len returns the number of readable records.
func (s *Store) Len() int {
	return len(s.records)
}

// Record returns the record at position p.
func (s *Store) Record(p Position) (Record, error) {
	if p < 0 || int(p) >= len(s.records) {
		return Record{}, errors.Wrapf(ErrOutOfRange, "no record at position %d", p)
	}
	return s.records[p], nil
}

// Records returns a copy of the records in store order.
func (s *Store) Records() []Record {
	return slices.Clone(s.records)
}

// Append adds a record at the end of the store and saves it. The store is left
// unchanged when saving fails.
func (s *Store) Append(key, value string) error {
	prev := s.records
	s.records = append(slices.Clip(s.records), Record{
		Key:   strings.TrimSpace(key),
		Value: strings.TrimSpace(value),
	})
	if err := s.Save(); err != nil {
		s.records = prev
		return err
	}
	return nil
}

// DeleteIndices removes the records at the given positions and saves the
// store. Duplicated positions are ignored and removal runs from the highest
// position down, so the result does not depend on the order of ps. The store
// is left unchanged when a position is out of range or saving fails.
func (s *Store) DeleteIndices(ps []Position) error {
	unique := slices.Clone(ps)
	slices.Sort(unique)
	unique = slices.Compact(unique)
	for _, p := range unique {
		if p < 0 || int(p) >= len(s.records) {
			return errors.Wrapf(ErrOutOfRange, "cannot delete position %d", p)
		}
	}

	prev := s.records
	records := slices.Clone(s.records)
	for i := len(unique) - 1; i >= 0; i-- {
		p := int(unique[i])
		records = slices.Delete(records, p, p+1)
	}
	s.records = records
	if err := s.Save(); err != nil {
		s.records = prev
		return err
	}
	return nil
}

// SuccessRatio returns the fraction of non-empty entries of the last load that
// were decrypted and parsed. It is 1 for an empty file.
func (s *Store) SuccessRatio() float64 {
	if s.attempted == 0 {
		return 1
	}
	return float64(s.attempted-len(s.unreadable)) / float64(s.attempted)
}

// Path returns the location of the store file.
func (s *Store) Path() string {
	return s.f.path
}
