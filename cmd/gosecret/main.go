// Command gosecret manages an encrypted store of secret notes. Without a
// subcommand it starts an interactive session; with --json it speaks
// line-delimited JSON on stdin and stdout.
package main

import (
	"log"
)

// version
const (
	major = "2"
	minor = "0"
	patch = "0"
)

func versionString() string {
	return "gosecret v" + major + "." + minor + "." + patch
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		log.Fatal("[error] ", err)
	}
}
