package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ambry-data/ambryctl/internal/cli"
	"github.com/ambry-data/ambryctl/internal/provision"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// A fatal provisioning step propagates its own exit status
		var fatal *provision.FatalStepError
		if errors.As(err, &fatal) && fatal.ExitCode != 0 {
			os.Exit(fatal.ExitCode)
		}

		os.Exit(1)
	}
}
