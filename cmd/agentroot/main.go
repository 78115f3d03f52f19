// Command agentroot is a thin CLI over the agentroot-go library: index a
// collection of local files and search it from a shell. It is not the core
// deliverable — an embedding daemon or editor integration is expected to
// drive the library directly — but it makes the library runnable on its own.
package main

import (
	"os"

	"github.com/epappas/agentroot-go/cmd/agentroot/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
