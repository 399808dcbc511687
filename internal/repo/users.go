package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/storage"
)

type Users struct {
	store storage.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewUsers(store storage.Store, log *zap.SugaredLogger) *Users {
	return &Users{store: store, log: log, now: time.Now}
}

func (r *Users) WithClock(now func() time.Time) *Users {
	r.now = now
	return r
}

func (r *Users) List(ctx context.Context) ([]models.User, error) {
	var list []models.User
	if err := loadList(ctx, r.store, r.log, storage.KeyUsers, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Email == email {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("пользователь %s: %w", email, storage.ErrNotFound)
}

// Create добавляет учётную запись. Уникальность email проверяется только
// здесь, на регистрации; при дубликате коллекция остаётся без изменений.
func (r *Users) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = fmt.Sprintf("user_%d", r.now().UnixMilli())
	}
	if err := models.Validate(u); err != nil {
		return models.User{}, err
	}

	list, err := r.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, e := range list {
		if e.Email == u.Email {
			return models.User{}, fmt.Errorf("email %s: %w", u.Email, ErrDuplicate)
		}
	}
	list = append(list, u)
	if err := saveList(ctx, r.store, storage.KeyUsers, list); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// CurrentUser — запись сессии. Отсутствие сессии — ErrNotFound.
func (r *Users) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	err := storage.GetJSON(ctx, r.store, storage.KeyCurrentUser, &u)
	if errors.Is(err, storage.ErrCorrupt) {
		r.log.Warnw("повреждённая запись сессии", "err", err)
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Users) SetCurrentUser(ctx context.Context, u models.User) error {
	return saveList(ctx, r.store, storage.KeyCurrentUser, u)
}

func (r *Users) ClearSession(ctx context.Context) error {
	return r.store.Delete(ctx, storage.KeyCurrentUser)
}
