// Command aigo answers posterior queries over belief networks by recursive
// conditioning and runs the classic search, planning, MDP, and CSP examples.
//
// Usage:
//
//	aigo query fire_alarm --var Fire --evidence Report=true
//	aigo compile ./networks
//	aigo test ./scenarios
//	aigo replay --db ./aigo.db
//
// Environment defaults: AIGO_DB, AIGO_LOG_LEVEL, AIGO_PARALLEL, AIGO_FORMAT.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/aigo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aigo: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
