package main

import (
	"fmt"
	"os"

	"github.com/curio-network/gcurio/internal/flags"
	"github.com/urfave/cli/v2"
)

const (
	defaultKeyfileName = "curiokey.hex"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, gitDate, "a gcurio settlement key manager")
	app.Commands = []*cli.Command{
		commandGenerate,
		commandInspect,
		commandPrefix,
		commandSignSale,
		commandVerifySale,
	}
}

// Commonly used command line flags.
var (
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
	keyfileFlag = &cli.StringFlag{
		Name:  "keyfile",
		Usage: "file containing the hex-encoded private key",
		Value: defaultKeyfileName,
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
