// Command muxkit is the front-end CLI binary: it also re-execs itself
// into the hidden _daemon subcommand when a client needs to lazily fork
// the per-user server (see internal/server.Connect).
package main

import (
	"os"

	"muxkit/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
