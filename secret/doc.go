/*
Package secret provides a library to safely store key/value pairs into an
encrypted text file on disk.


Encryption

Every entry is encrypted on its own using AES-256 in GCM (Galois/Counter
Mode). The encryption key is derived from the SHA-256 digest of the store
passphrase using the PBKDF2 algorithm. A corrupted entry, or an entry written
with another passphrase, does not prevent the rest of the store from loading.


File Format

The store file is UTF-8 text. Entries are separated by a "|" character,
followed by a newline for readability. Each entry is the hexadecimal encoding
of:

   16 bytes for the salt used by the key derivation algorithm (PBKDF2)

   12 bytes for the nonce required by the AES-GCM cipher

   All other bytes are the encrypted entry and its authentication tag.

Whitespace inside an entry is ignored and empty entries are skipped.

Before the encryption, the key/value pair is encoded using the following
format:

   <len(key)> <len(value)> <key> <value>

The lengths are decimal byte counts of the key and value once surrounding
whitespace is trimmed. The value may contain spaces and newlines.


Limitation

The store is not optimized for huge amount of data nor for high performance:
every change rewrites the whole file.


Security

All the security relies on the passphrase. It is therefore highly recommended
to use a strong passphrase, preferably generated with a strong generator.
*/
package secret
