// Command contentsync exports and imports content entities between sites.
package main

import (
	"os"

	"github.com/custodia-labs/contentsync/internal/adapters/driving/cli"
)

func main() {
	cli.SetBootstrap(bootstrap)

	err := cli.Execute()
	if closeErr := cli.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Exit(1)
	}
}
