// Command archivist is a document archive with OCR, translation, full-text
// search and redaction.
package main

import (
	"os"

	"github.com/custodia-labs/archivist/internal/adapters/driving/cli"
	"github.com/custodia-labs/archivist/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	app, err := wire()
	if err != nil {
		logger.Error(err, "startup failed")
		return 1
	}
	defer app.Close()

	cli.SetServices(app.services)

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
