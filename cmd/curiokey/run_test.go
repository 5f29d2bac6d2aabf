package main

import (
	"fmt"
	"os"
	"testing"

	"github.com/curio-network/gcurio/internal/cmdtest"
	"github.com/docker/docker/pkg/reexec"
)

type testCuriokey struct {
	*cmdtest.TestCmd
}

// spawns curiokey with the given command line args.
func runCuriokey(t *testing.T, args ...string) *testCuriokey {
	tt := new(testCuriokey)
	tt.TestCmd = cmdtest.NewTestCmd(t, tt)
	tt.Run("curiokey-test", args...)
	return tt
}

func TestMain(m *testing.M) {
	// Run the app if we've been exec'd as "curiokey-test" in runCuriokey.
	reexec.Register("curiokey-test", func() {
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	})
	// check if we have been reexec'd
	if reexec.Init() {
		return
	}
	os.Exit(m.Run())
}
