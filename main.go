/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/aero-boar/engine"
	"github.com/spaghettifunk/aero-boar/testbed"
)

func main() {
	tb, err := testbed.NewTestGame("config.toml")
	if err != nil {
		panic(err)
	}

	engine, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the run loop on the first signal
	go func() {
		<-sigCh
		engine.Stop()
	}()

	// run engine; Run shuts everything down on exit
	if err := engine.Run(); err != nil {
		panic(err)
	}
}
