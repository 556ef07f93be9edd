package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pscss/state"
)

func main() {
	// interrupt cancels context, long batch conversions stop between sources
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err == nil {
		return
	}
	// before logging is ready and after it is closed the only place left is stderr
	if !errLogged {
		fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
	}
	os.Exit(1)
}
