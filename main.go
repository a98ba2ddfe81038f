package main

import (
	"podcastd/cmd"

	_ "golang.org/x/crypto/x509roots/fallback" // TLS roots for scratch containers
)

func main() {
	cmd.Execute()
}
