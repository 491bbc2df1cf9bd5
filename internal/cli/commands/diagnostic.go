package commands

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/repo"
	"context"
	"fmt"
	"time"
)

type diagnosticCmd struct{}

func (diagnosticCmd) Name() string { return "diagnostic" }
func (diagnosticCmd) Description() string {
	return "Показать выбранное хранилище и число записей"
}
func (diagnosticCmd) Usage() string { return "diagnostic" }

func (diagnosticCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	start := time.Now()
	return withBackend(ctx, cfg, func(b repo.Backend) error {
		connected := time.Since(start)
		wn, err := b.Wrappers().Count(ctx)
		if err != nil {
			return fmt.Errorf("count wrappers: %w", err)
		}
		an, err := b.Admins().Count(ctx)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		uri := cfg.MaskedMongoURI()
		if uri == "" {
			uri = "(not set)"
		}
		fmt.Fprintf(Out, "mode:       %s\n", cfg.DeployMode)
		fmt.Fprintf(Out, "backend:    %s\n", b.Name())
		fmt.Fprintf(Out, "database:   %s\n", cfg.MongoDatabase)
		fmt.Fprintf(Out, "mongo uri:  %s\n", uri)
		fmt.Fprintf(Out, "connect:    %s\n", connected.Round(time.Millisecond))
		fmt.Fprintf(Out, "wrappers:   %d\n", wn)
		fmt.Fprintf(Out, "admins:     %d\n", an)
		return nil
	})
}

func init() { RegisterCmd(diagnosticCmd{}) }
