// Command keygen prints a fresh base64-encoded AES-256 key suitable for the
// AUTHCORE_ENCRYPTION_KEY environment variable.
package main

import (
	"fmt"
	"os"

	"github.com/shoplane/authcore/pkg/secretcodec"
)

func main() {
	key, err := secretcodec.GenerateEncodedKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(key)
}
