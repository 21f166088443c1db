// Package main provides the focuserve binary: a local development
// helper that serves the built Focus Timer UI and opens it in a browser.
package main

import (
	"log"
	"os"

	"github.com/aiam-project/focuserve/internal/cli"
)

func main() {
	app := cli.NewApp()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
