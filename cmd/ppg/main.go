// Command ppg is the orchestration kernel's CLI entrypoint.
package main

import (
	"os"

	"github.com/ppgtool/ppg/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
