package cart

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go-restaurant-ordering/models"
	"go-restaurant-ordering/store"
)

// FileBackend keeps the snapshot in a JSON file, written atomically.
type FileBackend struct {
	Path string
}

func (b FileBackend) Load(_ context.Context) (models.CartSnapshot, bool, error) {
	var snapshot models.CartSnapshot
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot, false, nil
		}
		return snapshot, false, err
	}
	if len(data) == 0 {
		return snapshot, false, nil
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, false, err
	}
	return snapshot, true, nil
}

func (b FileBackend) Save(_ context.Context, snapshot models.CartSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	temp := b.Path + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(temp, b.Path)
}

// SessionBackend stores the snapshot of one shopper session in the content store.
type SessionBackend struct {
	Carts     store.CartStore
	SessionID string
}

func (b SessionBackend) Load(ctx context.Context) (models.CartSnapshot, bool, error) {
	snapshot, err := b.Carts.LoadCart(ctx, b.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.CartSnapshot{SessionID: b.SessionID}, false, nil
	}
	if err != nil {
		return snapshot, false, err
	}
	return snapshot, true, nil
}

func (b SessionBackend) Save(ctx context.Context, snapshot models.CartSnapshot) error {
	snapshot.SessionID = b.SessionID
	return b.Carts.SaveCart(ctx, snapshot)
}
