package main

import (
	"context"
	"fmt"
	"os"

	"github.com/peco/liveview/cli"
	"github.com/peco/liveview/internal/util"
)

var version = "v0.1.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cli.New(version).Run(ctx, os.Args[1:]); err != nil {
		exitStatus, _ := util.GetExitStatus(err)
		if !util.IsIgnorableError(err) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		cancel()
		os.Exit(exitStatus)
	}
}
