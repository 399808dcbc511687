// Package auth — вход/регистрация: сначала внешний бэкенд (если
// сконфигурирован), при любой его ошибке — локальное хранилище.
// Ошибки внешнего бэкенда не повторяются и не фатальны.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/remote"
	"github.com/Spok95/school-dashboard/internal/repo"
)

var ErrInvalidCredentials = errors.New("неверные учётные данные")

type Gate struct {
	users  *repo.Users
	remote *remote.Client // nil — внешняя авторизация выключена
	log    *zap.SugaredLogger
}

func NewGate(users *repo.Users, rc *remote.Client, log *zap.SugaredLogger) *Gate {
	return &Gate{users: users, remote: rc, log: log}
}

// SignIn проверяет учётные данные и сохраняет запись сессии.
// Локальный путь сравнивает пароль открытым текстом — ограничение
// демо-хранилища, зафиксированное специально.
func (g *Gate) SignIn(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	if g.remote != nil {
		ru, err := g.remote.SignIn(ctx, email, password)
		if err != nil {
			g.log.Warnw("внешний вход не удался, переходим на локальный", "email", email, "err", err)
		} else {
			u := models.User{ID: ru.ID, Email: ru.Email, Password: password, Role: role}
			if err := g.users.SetCurrentUser(ctx, u); err != nil {
				return nil, err
			}
			return &u, nil
		}
	}

	list, err := g.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		u := list[i]
		if u.Email == email && u.Password == password && u.Role == role {
			if err := g.users.SetCurrentUser(ctx, u); err != nil {
				return nil, err
			}
			return &u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Register заводит учётную запись. Через внешний бэкенд — signUp плюс
// запись профиля (ошибку профиля только логируем); локально — проверка
// дубликата email и добавление в коллекцию users.
func (g *Gate) Register(ctx context.Context, u models.User) (*models.User, error) {
	if g.remote != nil {
		ru, err := g.remote.SignUp(ctx, u.Email, u.Password)
		if err != nil {
			g.log.Warnw("внешняя регистрация не удалась, переходим на локальную", "email", u.Email, "err", err)
		} else {
			profile := map[string]any{
				"id":        ru.ID,
				"email":     u.Email,
				"role":      u.Role,
				"firstName": u.FirstName,
				"lastName":  u.LastName,
			}
			if u.StudentID != "" {
				profile["studentId"] = u.StudentID
			}
			if u.Department != "" {
				profile["department"] = u.Department
			}
			if err := g.remote.InsertProfile(ctx, profile); err != nil {
				g.log.Warnw("профиль не записался во внешний бэкенд", "email", u.Email, "err", err)
			}
			u.ID = ru.ID
			return &u, nil
		}
	}

	created, err := g.users.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Current возвращает запись сессии (storage.ErrNotFound, если не входили).
func (g *Gate) Current(ctx context.Context) (*models.User, error) {
	return g.users.CurrentUser(ctx)
}

func (g *Gate) Logout(ctx context.Context) error {
	return g.users.ClearSession(ctx)
}
