package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ChocoWrappers/internal/cli/commands"
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/logger"
)

func main() {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	sugar := logger.New(cfg)
	commands.SetLogger(sugar)
	defer func() { _ = sugar.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// dispatcher
	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == 0 {
		return
	}
	_ = sugar.Sync()
	os.Exit(exitCode)
}
