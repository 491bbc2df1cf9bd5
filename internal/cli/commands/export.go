package commands

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/repo"
	"context"
	"fmt"
)

type exportCmd struct{}

func (exportCmd) Name() string { return "export" }
func (exportCmd) Description() string {
	return "Выгрузить коллекции в JSON-файлы экспорта"
}
func (exportCmd) Usage() string { return "export <dir>" }

func (exportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	dir := args[0]
	return withBackend(ctx, cfg, func(b repo.Backend) error {
		wrappers, err := b.Wrappers().FindAll(ctx, repo.Filter{}, repo.SortCreatedAt)
		if err != nil {
			return fmt.Errorf("read wrappers: %w", err)
		}
		admins, err := b.Admins().FindAll(ctx, repo.Filter{}, repo.SortNone)
		if err != nil {
			return fmt.Errorf("read admins: %w", err)
		}
		if err := repo.WriteSnapshot(dir, &repo.Snapshot{Wrappers: wrappers, Admins: admins}); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Fprintf(Out, "exported %d wrappers and %d admins from %s to %s\n", len(wrappers), len(admins), b.Name(), dir)
		return nil
	})
}

func init() { RegisterCmd(exportCmd{}) }
