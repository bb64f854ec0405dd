// Package main provides a one-shot utility for signing credential generation.
//
// It emits the API key/secret pair used to sign room join tokens.
package main

import (
	"os"

	"github.com/louisbranch/gather.space/internal/platform/config"
	"github.com/louisbranch/gather.space/internal/tools/apikey"
)

func main() {
	if err := apikey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate api key: %v", err)
	}
}
