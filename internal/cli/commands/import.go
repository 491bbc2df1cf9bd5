package commands

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/repo"
	"context"
	"fmt"
	"path/filepath"
)

type importCmd struct{}

func (importCmd) Name() string { return "import" }
func (importCmd) Description() string {
	return "Загрузить JSON-файлы экспорта в хранилище"
}
func (importCmd) Usage() string { return "import <dir>" }

func (importCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	dir := args[0]
	snap, err := repo.FileSnapshot(
		filepath.Join(dir, repo.WrappersExportFile),
		filepath.Join(dir, repo.AdminsExportFile),
	)()
	if err != nil {
		return err
	}
	return withWritableBackend(ctx, cfg, func(b repo.Backend) error {
		if len(snap.Wrappers) > 0 {
			if _, err := b.Wrappers().InsertMany(ctx, toPtrs(snap.Wrappers)); err != nil {
				return fmt.Errorf("import wrappers: %w", err)
			}
		}
		if len(snap.Admins) > 0 {
			if _, err := b.Admins().InsertMany(ctx, toPtrs(snap.Admins)); err != nil {
				return fmt.Errorf("import admins: %w", err)
			}
		}
		fmt.Fprintf(Out, "imported %d wrappers and %d admins into %s\n", len(snap.Wrappers), len(snap.Admins), b.Name())
		return nil
	})
}

func init() { RegisterCmd(importCmd{}) }
