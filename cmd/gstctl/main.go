package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/gstclient/internal/gstctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := gstctl.Execute(ctx)
	stop()
	os.Exit(code)
}
