package commands

import (
	"ChocoWrappers/internal/model"
	"ChocoWrappers/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const adminHashCost = 12

// sampleWrappers — демонстрационный набор из вшитого экспорта, без id и отметок времени:
// хранилище присвоит новые.
func sampleWrappers() ([]*model.Wrapper, error) {
	snap, err := repo.EmbeddedSnapshot()
	if err != nil {
		return nil, err
	}
	out := make([]*model.Wrapper, 0, len(snap.Wrappers))
	for i := range snap.Wrappers {
		w := snap.Wrappers[i].Clone()
		w.ID = ""
		w.Likes = 0
		w.LikedBy = []string{}
		w.CreatedAt, w.UpdatedAt = time.Time{}, time.Time{}
		out = append(out, w)
	}
	return out, nil
}

// ensureDefaultAdmin создаёт администратора по умолчанию, если его нет.
func ensureDefaultAdmin(ctx context.Context, admins repo.AdminStore, username, password string) (bool, error) {
	if username == "" {
		return false, nil
	}
	_, err := admins.FindOne(ctx, repo.Filter{Username: username})
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return false, fmt.Errorf("find admin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), adminHashCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := admins.InsertOne(ctx, &model.Admin{Username: username, Password: string(hash)}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

func toPtrs[T any](docs []T) []*T {
	out := make([]*T, 0, len(docs))
	for i := range docs {
		out = append(out, &docs[i])
	}
	return out
}
