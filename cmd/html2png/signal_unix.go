//go:build !windows

package main

import (
	"os"
	"syscall"
)

// SIGHUP covers a closed terminal, which would otherwise leave Chrome behind.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
