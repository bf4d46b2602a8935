// encrypt prints the encrypted form of a database password for database.password
// with database.password_encrypted=true.
package main

import (
	"fmt"
	"os"

	"reports_srv/internal/security"

	"github.com/spf13/pflag"
)

func main() {
	secret := pflag.StringP("secret", "s", os.Getenv("APP_SECURITY_SECRET"), "encryption secret (default $APP_SECURITY_SECRET)")
	text := pflag.StringP("text", "t", "", "plaintext to encrypt")
	decrypt := pflag.BoolP("decrypt", "d", false, "decrypt --text instead of encrypting it")
	pflag.Parse()

	if *text == "" {
		fmt.Fprintln(os.Stderr, "--text is required")
		pflag.Usage()
		os.Exit(2)
	}

	var (
		out string
		err error
	)
	if *decrypt {
		out, err = security.Decrypt(*text, *secret)
	} else {
		out, err = security.Encrypt(*text, *secret)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "encrypt: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
