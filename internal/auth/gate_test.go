package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Spok95/school-dashboard/internal/auth"
	"github.com/Spok95/school-dashboard/internal/logging"
	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/remote"
	"github.com/Spok95/school-dashboard/internal/repo"
	"github.com/Spok95/school-dashboard/internal/storage"
	"github.com/Spok95/school-dashboard/internal/storage/memstore"
)

func newGate(t *testing.T, rc *remote.Client) (*auth.Gate, *repo.Users) {
	t.Helper()
	store := memstore.New()
	lg := logging.Nop()
	seed := []models.User{
		{ID: "user1", Email: "teacher@school.edu", Password: "demo123", Role: models.RoleTeacher, FirstName: "Jane", LastName: "Smith"},
	}
	if err := storage.SetJSON(context.Background(), store, storage.KeyUsers, seed); err != nil {
		t.Fatal(err)
	}
	users := repo.NewUsers(store, lg.Sugar)
	return auth.NewGate(users, rc, lg.Sugar), users
}

func TestSignInLocal(t *testing.T) {
	g, _ := newGate(t, nil)
	ctx := context.Background()

	t.Run("верные данные", func(t *testing.T) {
		u, err := g.SignIn(ctx, "teacher@school.edu", "demo123", models.RoleTeacher)
		if err != nil {
			t.Fatal(err)
		}
		if u.ID != "user1" {
			t.Fatalf("ожидали user1, получили %s", u.ID)
		}
		cur, err := g.Current(ctx)
		if err != nil {
			t.Fatalf("сессия не сохранилась: %v", err)
		}
		if cur.Email != "teacher@school.edu" {
			t.Fatalf("в сессии не тот пользователь: %s", cur.Email)
		}
	})

	t.Run("неверный пароль", func(t *testing.T) {
		_ = g.Logout(ctx)
		if _, err := g.SignIn(ctx, "teacher@school.edu", "wrong", models.RoleTeacher); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("ожидали ErrInvalidCredentials, получили %v", err)
		}
		if _, err := g.Current(ctx); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("после неудачного входа сессии быть не должно: %v", err)
		}
	})

	t.Run("роль не совпала", func(t *testing.T) {
		if _, err := g.SignIn(ctx, "teacher@school.edu", "demo123", models.RoleStudent); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("ожидали ErrInvalidCredentials, получили %v", err)
		}
	})
}

func TestSignInRemoteFirst(t *testing.T) {
	ctx := context.Background()

	t.Run("внешний бэкенд отвечает", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/v1/token" {
				t.Errorf("неожиданный путь: %s", r.URL.Path)
			}
			if r.Header.Get("apikey") == "" {
				t.Error("нет заголовка apikey")
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user":{"id":"remote-1","email":"teacher@school.edu"}}`))
		}))
		defer srv.Close()

		g, _ := newGate(t, remote.New(srv.URL, "anon"))
		u, err := g.SignIn(ctx, "teacher@school.edu", "anything", models.RoleTeacher)
		if err != nil {
			t.Fatal(err)
		}
		if u.ID != "remote-1" {
			t.Fatalf("ожидали внешний id, получили %s", u.ID)
		}
	})

	t.Run("внешний бэкенд падает — локальный fallback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer srv.Close()

		g, _ := newGate(t, remote.New(srv.URL, "anon"))
		u, err := g.SignIn(ctx, "teacher@school.edu", "demo123", models.RoleTeacher)
		if err != nil {
			t.Fatal(err)
		}
		if u.ID != "user1" {
			t.Fatalf("ожидали локального пользователя, получили %s", u.ID)
		}
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("локальная регистрация", func(t *testing.T) {
		g, users := newGate(t, nil)
		u, err := g.Register(ctx, models.User{
			Email: "new@school.edu", Password: "secret1", Role: models.RoleStudent,
			FirstName: "New", LastName: "Student",
		})
		if err != nil {
			t.Fatal(err)
		}
		if u.ID == "" {
			t.Fatal("id не присвоен")
		}
		got, err := users.ByEmail(ctx, "new@school.edu")
		if err != nil {
			t.Fatal(err)
		}
		if got.FirstName != "New" {
			t.Fatalf("пользователь не сохранился: %+v", got)
		}
	})

	t.Run("дубликат email", func(t *testing.T) {
		g, _ := newGate(t, nil)
		_, err := g.Register(ctx, models.User{
			Email: "teacher@school.edu", Password: "demo123", Role: models.RoleTeacher,
			FirstName: "Dup", LastName: "Licate",
		})
		if !errors.Is(err, repo.ErrDuplicate) {
			t.Fatalf("ожидали ErrDuplicate, получили %v", err)
		}
	})

	t.Run("внешняя регистрация с записью профиля", func(t *testing.T) {
		var profileHits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/v1/signup":
				_, _ = w.Write([]byte(`{"id":"remote-2","email":"ext@school.edu"}`))
			case "/rest/v1/users":
				profileHits++
				w.WriteHeader(http.StatusCreated)
			default:
				t.Errorf("неожиданный путь: %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		g, users := newGate(t, remote.New(srv.URL, "anon"))
		u, err := g.Register(ctx, models.User{
			Email: "ext@school.edu", Password: "secret1", Role: models.RoleStudent,
			FirstName: "Ext", LastName: "User",
		})
		if err != nil {
			t.Fatal(err)
		}
		if u.ID != "remote-2" {
			t.Fatalf("ожидали внешний id, получили %s", u.ID)
		}
		if profileHits != 1 {
			t.Fatalf("профиль должен записаться ровно один раз, записался %d", profileHits)
		}
		// при внешней регистрации локальная коллекция не трогается
		if _, err := users.ByEmail(ctx, "ext@school.edu"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("внешний пользователь не должен попадать в локальное хранилище: %v", err)
		}
	})
}
