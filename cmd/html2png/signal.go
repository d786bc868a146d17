package main

import (
	"context"
	"os/signal"
)

// interruptContext ends the run on any of stopSignals. Run then records the
// remaining cards as not attempted and closes the browser before exit.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
