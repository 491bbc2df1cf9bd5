package commands

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/repo"
	"context"
	"fmt"
)

type seedCmd struct{}

func (seedCmd) Name() string { return "seed" }
func (seedCmd) Description() string {
	return "Создать администратора по умолчанию и демонстрационные обёртки (если пусто)"
}
func (seedCmd) Usage() string { return "seed" }

func (seedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withWritableBackend(ctx, cfg, func(b repo.Backend) error {
		created, err := ensureDefaultAdmin(ctx, b.Admins(), cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(Out, "admin %q created\n", cfg.AdminUsername)
		} else {
			fmt.Fprintf(Out, "admin %q already exists\n", cfg.AdminUsername)
		}

		n, err := b.Wrappers().Count(ctx)
		if err != nil {
			return fmt.Errorf("count wrappers: %w", err)
		}
		if n > 0 {
			fmt.Fprintf(Out, "wrappers: %d already present, skipped\n", n)
			return nil
		}
		samples, err := sampleWrappers()
		if err != nil {
			return err
		}
		ids, err := b.Wrappers().InsertMany(ctx, samples)
		if err != nil {
			return fmt.Errorf("insert wrappers: %w", err)
		}
		fmt.Fprintf(Out, "wrappers: %d sample wrappers inserted into %s\n", len(ids), b.Name())
		return nil
	})
}

func init() { RegisterCmd(seedCmd{}) }
