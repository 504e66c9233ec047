package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/klemjul/novachat/cmd"
	"github.com/klemjul/novachat/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := app.NewDefaultApp()
	err := cmd.RootCommand(app).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
