package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mobile-next/mumucli/cli"
	"github.com/mobile-next/mumucli/commands"
	"github.com/mobile-next/mumucli/devices"
)

func main() {
	// create device registry for cleanup tracking
	registry := devices.NewDeviceRegistry()
	commands.SetRegistry(registry)

	// devices are disconnected last, after anything registered later
	hook := devices.NewShutdownHook()
	hook.Register("devices", func() error {
		registry.CleanupAll()
		return nil
	})
	commands.SetShutdownHook(hook)

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute()
	}()

	// wait for command completion or signal
	select {
	case <-sigChan:
		if err := hook.Shutdown(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(0)
	case err := <-done:
		// disconnect IPC sessions opened by this command
		if shutdownErr := hook.Shutdown(); shutdownErr != nil {
			fmt.Fprintln(os.Stderr, shutdownErr)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
