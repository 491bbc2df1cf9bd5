package commands

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/repo"
	"context"
	"fmt"
)

type resetCmd struct{}

func (resetCmd) Name() string { return "reset" }
func (resetCmd) Description() string {
	return "Удалить все обёртки и вставить демонстрационный набор"
}
func (resetCmd) Usage() string { return "reset" }

func (resetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withWritableBackend(ctx, cfg, func(b repo.Backend) error {
		existing, err := b.Wrappers().FindAll(ctx, repo.Filter{}, repo.SortNone)
		if err != nil {
			return fmt.Errorf("read wrappers: %w", err)
		}
		for _, w := range existing {
			if _, err := b.Wrappers().DeleteOne(ctx, w.ID); err != nil {
				return fmt.Errorf("delete wrapper %s: %w", w.ID, err)
			}
		}
		samples, err := sampleWrappers()
		if err != nil {
			return err
		}
		if _, err := b.Wrappers().InsertMany(ctx, samples); err != nil {
			return fmt.Errorf("insert wrappers: %w", err)
		}
		fmt.Fprintf(Out, "deleted %d wrappers, inserted %d samples into %s\n", len(existing), len(samples), b.Name())
		return nil
	})
}

func init() { RegisterCmd(resetCmd{}) }
