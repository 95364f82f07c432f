package main

import (
	"os"

	"github.com/darcyabjones/acc-to-tax/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
