package secret_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/e-XpertSolutions/go-secret/secret"
)

func Example() {
	dir, err := os.MkdirTemp("", "secret-example")
	if err != nil {
		log.Print("[error] ", err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "secret.store")

	// Make sure the store file exists before opening it.
	if err := secret.CreateStoreFile(path); err != nil {
		log.Print("[error] ", err)
		return
	}

	c, err := secret.NewCipher("strong_passphrase")
	if err != nil {
		log.Print("[error] ", err)
		return
	}

	store, err := secret.OpenStore(path, c)
	if err != nil {
		log.Print("[error] ", err)
		return
	}

	// Store a password.
	if err := store.Append("password", "my_very_secret_password"); err != nil {
		log.Print("[error] ", err)
		return
	}

	// Open the store again, as a new process would.
	store, err = secret.OpenStore(path, c)
	if err != nil {
		log.Print("[error] ", err)
		return
	}

	r, err := store.Record(0)
	if err != nil {
		log.Print("[error] ", err)
		return
	}
	fmt.Println("Retrieved:", r.Key, r.Value)

	fmt.Println("Delete password")

	if err := store.DeleteIndices([]secret.Position{0}); err != nil {
		log.Print("[error] ", err)
		return
	}

	fmt.Println("Entries:", store.Len())

	// Output:
	// Retrieved: password my_very_secret_password
	// Delete password
	// Entries: 0
}
