package main

import (
	"os"

	"github.com/kailas-cloud/kbproxy/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
