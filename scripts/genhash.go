//go:build ignore

// genhash prints bcrypt hashes for seeding users by hand:
//
//	go run scripts/genhash.go <email> <password> [<email> <password> ...]
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || len(args)%2 != 0 {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/genhash.go <email> <password> [...]")
		os.Exit(2)
	}

	for i := 0; i < len(args); i += 2 {
		email, pass := args[i], args[i+1]
		if len(pass) < 8 || len(pass) > 72 {
			fmt.Fprintf(os.Stderr, "%s: password must be 8-72 bytes\n", email)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		fmt.Printf("UPDATE users SET password_hash = '%s' WHERE email = '%s';\n", hash, email)
	}
}
