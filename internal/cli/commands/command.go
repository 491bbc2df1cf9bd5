package commands

import (
	"ChocoWrappers/internal/cli/bootstrap"
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/repo"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "seed".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "export <dir>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

var sugar = zap.NewNop().Sugar()

// SetLogger задаёт логгер для команд (выбор хранилища, предупреждения об откате).
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		sugar = l
	}
}

// openBackend открывает хранилище для команды; в тестах подменяется.
var openBackend = func(ctx context.Context, cfg *config.Config, write bool) (repo.Backend, func() error, error) {
	return bootstrap.OpenBackend(ctx, cfg, sugar, write)
}

// withBackend открывает хранилище только для чтения, выполняет fn и закрывает соединение.
func withBackend(ctx context.Context, cfg *config.Config, fn func(b repo.Backend) error) error {
	return runWithBackend(ctx, cfg, false, fn)
}

// withWritableBackend — то же для команд, меняющих данные: не пишет во временное резервное хранилище.
func withWritableBackend(ctx context.Context, cfg *config.Config, fn func(b repo.Backend) error) error {
	return runWithBackend(ctx, cfg, true, fn)
}

func runWithBackend(ctx context.Context, cfg *config.Config, write bool, fn func(b repo.Backend) error) (err error) {
	b, done, err := openBackend(ctx, cfg, write)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := done(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(b)
}

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds a help text for all commands.
func FormatGlobalUsage() string {
	lines := []string{
		"ChocoWrappers catalog CLI",
		"",
		"Usage:",
		"  catalogctl [-d <mongodb-uri>] [-mode full|static|memory] <command> [args]",
		"",
		"Commands:",
	}
	for _, c := range List() {
		lines = append(lines, fmt.Sprintf("  %-28s %s", c.Usage(), c.Description()))
	}
	return strings.Join(lines, "\n") + "\n"
}
