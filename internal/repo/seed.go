package repo

import (
	"ChocoWrappers/data"
	"ChocoWrappers/internal/model"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Имена файлов экспорта коллекций.
const (
	WrappersExportFile = "wrappers-export.json"
	AdminsExportFile   = "admins-export.json"
)

// Snapshot — содержимое обеих коллекций.
type Snapshot struct {
	Wrappers []model.Wrapper
	Admins   []model.Admin
}

// SnapshotLoader лениво отдаёт снимок для наполнения хранилища.
type SnapshotLoader func() (*Snapshot, error)

// ParseSnapshot разбирает JSON-экспорт коллекций.
func ParseSnapshot(wrappersJSON, adminsJSON []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if len(wrappersJSON) > 0 {
		if err := json.Unmarshal(wrappersJSON, &snap.Wrappers); err != nil {
			return nil, fmt.Errorf("decode %s: %w", CollectionWrappers, err)
		}
	}
	if len(adminsJSON) > 0 {
		if err := json.Unmarshal(adminsJSON, &snap.Admins); err != nil {
			return nil, fmt.Errorf("decode %s: %w", CollectionAdmins, err)
		}
	}
	return snap, nil
}

// EmbeddedSnapshot — снимок, вшитый в бинарник.
func EmbeddedSnapshot() (*Snapshot, error) {
	return ParseSnapshot(data.WrappersExport, data.AdminsExport)
}

// FileSnapshot возвращает загрузчик из файлов экспорта.
// Пустой путь означает вшитый экспорт соответствующей коллекции.
func FileSnapshot(wrappersPath, adminsPath string) SnapshotLoader {
	return func() (*Snapshot, error) {
		wj, err := readOr(wrappersPath, data.WrappersExport)
		if err != nil {
			return nil, err
		}
		aj, err := readOr(adminsPath, data.AdminsExport)
		if err != nil {
			return nil, err
		}
		return ParseSnapshot(wj, aj)
	}
}

func readOr(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return b, nil
}

// WriteSnapshot сохраняет обе коллекции в dir в формате экспорта.
func WriteSnapshot(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if snap.Wrappers == nil {
		snap.Wrappers = []model.Wrapper{}
	}
	if snap.Admins == nil {
		snap.Admins = []model.Admin{}
	}
	files := map[string]any{
		WrappersExportFile: snap.Wrappers,
		AdminsExportFile:   snap.Admins,
	}
	for name, v := range files {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}
