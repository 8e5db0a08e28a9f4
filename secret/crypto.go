package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const keySize = 32

const (
	pbkdf2Iter = 20000
	saltSize   = 16
)

// standard GCM nonce size
const nonceSize = 12

// ErrDecryption is returned by Decrypt when a blob cannot be authenticated with
// the cipher passphrase.
var ErrDecryption = errors.New("cannot decrypt entry")

// encryptedData is the layout of a single encrypted entry:
// salt | nonce | ciphertext (including the GCM tag).
type encryptedData []byte

func newEncryptedData(salt, nonce, ciphertext []byte) encryptedData {
	data := make(encryptedData, 0, len(salt)+len(nonce)+len(ciphertext))
	data = append(data, salt...)
	data = append(data, nonce...)
	data = append(data, ciphertext...)
	return data
}

func (data encryptedData) valid() bool {
	return len(data) > saltSize+nonceSize
}

func (data encryptedData) salt() []byte {
	if !data.valid() {
		return []byte{}
	}
	return data[:saltSize]
}

func (data encryptedData) nonce() []byte {
	if !data.valid() {
		return []byte{}
	}
	return data[saltSize : saltSize+nonceSize]
}

func (data encryptedData) ciphertext() []byte {
	if !data.valid() {
		return []byte{}
	}
	return data[saltSize+nonceSize:]
}

// A Cipher encrypts and decrypts individual entries with a key derived from a
// passphrase.
//
// The passphrase is first hashed with SHA-256 and the digest is stretched with
// PBKDF2 into an AES-256 key. Every Cipher draws its own salt for the entries
// it encrypts and stores it in front of each blob, so entries written by
// another Cipher built from the same passphrase can still be decrypted.
type Cipher struct {
	digest []byte

	salt []byte
	gcm  cipher.AEAD

	mu   sync.Mutex
	gcms map[string]cipher.AEAD
}

// NewCipher returns a Cipher keyed by the given passphrase.
func NewCipher(passphrase string) (*Cipher, error) {
	digest := sha256.Sum256([]byte(passphrase))
	salt, err := generateSalt()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create cipher")
	}
	gcm, err := newGCM(newKey(digest[:], salt))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create cipher")
	}
	return &Cipher{
		digest: digest[:],
		salt:   salt,
		gcm:    gcm,
		gcms:   map[string]cipher.AEAD{string(salt): gcm},
	}, nil
}

// Encrypt seals plaintext under a fresh random nonce. Encrypting the same
// plaintext twice never yields the same blob.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce, err := generateNonce(c.gcm.NonceSize())
	if err != nil {
		return nil, errors.Wrap(err, "cannot encrypt plaintext")
	}
	ciphertext := c.gcm.Seal(nil, nonce, plaintext, nil)
	return newEncryptedData(c.salt, nonce, ciphertext), nil
}

// Decrypt opens a blob produced by Encrypt. Any truncated, corrupted or
// foreign-keyed blob yields an error wrapping ErrDecryption.
func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	data := encryptedData(blob)
	if !data.valid() {
		return nil, errors.Wrap(ErrDecryption, "blob is truncated")
	}
	gcm, cached, err := c.gcmFor(data.salt())
	if err != nil {
		return nil, errors.Wrap(ErrDecryption, err.Error())
	}
	plaintext, err := gcm.Open(nil, data.nonce(), data.ciphertext(), nil)
	if err != nil {
		return nil, errors.Wrap(ErrDecryption, "message authentication failed")
	}
	if !cached {
		c.remember(data.salt(), gcm)
	}
	return plaintext, nil
}

// gcmFor returns the AEAD for salt and whether it came from the cache. A
// derived AEAD is only cached by remember, once it opened a blob.
func (c *Cipher) gcmFor(salt []byte) (cipher.AEAD, bool, error) {
	c.mu.Lock()
	gcm, ok := c.gcms[string(salt)]
	c.mu.Unlock()
	if ok {
		return gcm, true, nil
	}
	gcm, err := newGCM(newKey(c.digest, salt))
	if err != nil {
		return nil, false, err
	}
	return gcm, false, nil
}

func (c *Cipher) remember(salt []byte, gcm cipher.AEAD) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gcms[string(salt)] = gcm
}

func newKey(digest, salt []byte) []byte {
	return pbkdf2.Key(digest, salt, pbkdf2Iter, keySize, sha256.New)
}

func generateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "cannot generate salt")
	}
	return salt, nil
}

func generateNonce(nonceSize int) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "cannot generate nonce")
	}
	return nonce, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create new aes block cipher")
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create new gcm cipher")
	}
	return gcm, nil
}
