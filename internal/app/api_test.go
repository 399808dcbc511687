package app_test

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/school-dashboard/internal/analytics"
	"github.com/Spok95/school-dashboard/internal/app"
	"github.com/Spok95/school-dashboard/internal/auth"
	"github.com/Spok95/school-dashboard/internal/logging"
	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/repo"
	"github.com/Spok95/school-dashboard/internal/seed"
	"github.com/Spok95/school-dashboard/internal/storage/memstore"
)

// newServer поднимает API поверх memstore с демо-данными.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memstore.New()
	lg := logging.Nop()
	err := seed.Run(context.Background(), store, lg.Sugar, seed.Options{
		Now:  time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		Rand: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatal(err)
	}

	acts := repo.NewActivities(store, lg.Sugar)
	students := repo.NewStudents(store, lg.Sugar, acts)
	api := &app.API{
		Students:    students,
		Classes:     repo.NewClasses(store, lg.Sugar, students),
		Assignments: repo.NewAssignments(store, lg.Sugar),
		Activities:  acts,
		Goals:       repo.NewGoals(store, lg.Sugar),
		Engine:      analytics.New(students),
		Gate:        auth.NewGate(repo.NewUsers(store, lg.Sugar), nil, lg.Sugar),
		Log:         lg.Sugar,
	}
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, raw
}

func TestStudentsEndpoints(t *testing.T) {
	srv := newServer(t)

	t.Run("список из демо-данных", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/students", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("код %d: %s", resp.StatusCode, body)
		}
		var list []models.Student
		if err := json.Unmarshal(body, &list); err != nil {
			t.Fatal(err)
		}
		if len(list) != 5 {
			t.Fatalf("ожидали 5 учеников, получили %d", len(list))
		}
	})

	t.Run("ученик по id", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/students/STU001", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("код %d", resp.StatusCode)
		}
		var st models.Student
		if err := json.Unmarshal(body, &st); err != nil {
			t.Fatal(err)
		}
		if st.Name != "Alice Johnson" {
			t.Fatalf("не тот ученик: %s", st.Name)
		}
	})

	t.Run("несуществующий ученик — 404", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/students/STU999", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("ожидали 404, получили %d", resp.StatusCode)
		}
	})

	t.Run("выставление оценки и перечитывание", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/students/STU001/grades/final", `{"score":97}`)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("код %d: %s", resp.StatusCode, body)
		}

		_, body = doJSON(t, http.MethodGet, srv.URL+"/api/students/STU001", "")
		var st models.Student
		if err := json.Unmarshal(body, &st); err != nil {
			t.Fatal(err)
		}
		if score, ok := st.Grades.Get("final"); !ok || score != 97 {
			t.Fatalf("оценка не сохранилась: %v %v", score, ok)
		}

		// мутация породила запись активности
		_, body = doJSON(t, http.MethodGet, srv.URL+"/api/activities", "")
		var acts []models.Activity
		if err := json.Unmarshal(body, &acts); err != nil {
			t.Fatal(err)
		}
		if len(acts) == 0 || !strings.Contains(acts[0].Description, "Alice Johnson - final: 97") {
			t.Fatalf("нет активности об оценке: %+v", acts)
		}
	})

	t.Run("оценка вне диапазона — 422", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/students/STU001/grades/final", `{"score":150}`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("ожидали 422, получили %d", resp.StatusCode)
		}
	})

	t.Run("отметка посещаемости", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/students/STU002/attendance", `{"date":"2025-03-14","status":"present"}`)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("код %d: %s", resp.StatusCode, body)
		}
	})

	t.Run("неизвестный статус — 422", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/students/STU002/attendance", `{"date":"2025-03-14","status":"sick"}`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("ожидали 422, получили %d", resp.StatusCode)
		}
	})
}

func TestClassAndStatsEndpoints(t *testing.T) {
	srv := newServer(t)

	t.Run("ученики класса", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/classes/math101/students", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("код %d", resp.StatusCode)
		}
		var list []models.Student
		if err := json.Unmarshal(body, &list); err != nil {
			t.Fatal(err)
		}
		for _, st := range list {
			if st.Class != "math101" {
				t.Fatalf("чужой ученик в классе: %+v", st)
			}
		}
	})

	t.Run("несуществующий класс — 404", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/classes/nope/students", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("ожидали 404, получили %d", resp.StatusCode)
		}
	})

	t.Run("общая сводка", func(t *testing.T) {
		_, body := doJSON(t, http.MethodGet, srv.URL+"/api/stats/overall", "")
		var stats analytics.Stats
		if err := json.Unmarshal(body, &stats); err != nil {
			t.Fatal(err)
		}
		if stats.TotalStudents != 5 {
			t.Fatalf("ожидали 5 учеников в сводке, получили %d", stats.TotalStudents)
		}
		// high среди демо-данных один — David Brown
		if stats.AtRiskCount != 1 {
			t.Fatalf("ожидали atRiskCount 1, получили %d", stats.AtRiskCount)
		}
	})

	t.Run("интервенции всегда массив", func(t *testing.T) {
		_, body := doJSON(t, http.MethodGet, srv.URL+"/api/interventions", "")
		if !strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
			t.Fatalf("ожидали JSON-массив: %s", body)
		}
	})
}

func TestGoalEndpoints(t *testing.T) {
	srv := newServer(t)
	goalJSON := `{"title":"Pass algebra","type":"academic","target":"85% average","deadline":"2025-06-01","progress":10}`

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/goals", goalJSON)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("код %d: %s", resp.StatusCode, body)
	}
	var created models.Goal
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(created.ID, "goal_") {
		t.Fatalf("id не назначен: %q", created.ID)
	}

	resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/goals/"+created.ID,
		`{"title":"Pass algebra","type":"academic","target":"85% average","deadline":"2025-06-01","progress":60}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("код %d: %s", resp.StatusCode, body)
	}
	var updated models.Goal
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Progress != 60 {
		t.Fatalf("прогресс не обновился: %d", updated.Progress)
	}

	// апдейт несуществующей цели не создаёт новую
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/goals/goal_unknown", goalJSON)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("ожидали 404, получили %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/goals/"+created.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("код %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/goals/"+created.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("повторное удаление — 404, получили %d", resp.StatusCode)
	}
}

func TestAuthEndpoints(t *testing.T) {
	srv := newServer(t)

	t.Run("вход демо-учителя", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login",
			`{"email":"teacher@demo.com","password":"demo123","role":"teacher"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("код %d: %s", resp.StatusCode, body)
		}

		resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("код %d", resp.StatusCode)
		}
		var u models.User
		if err := json.Unmarshal(body, &u); err != nil {
			t.Fatal(err)
		}
		if u.Email != "teacher@demo.com" {
			t.Fatalf("не тот пользователь в сессии: %s", u.Email)
		}
	})

	t.Run("неверный пароль — 401", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login",
			`{"email":"teacher@demo.com","password":"nope","role":"teacher"}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("ожидали 401, получили %d", resp.StatusCode)
		}
	})

	t.Run("повторная регистрация — 409", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register",
			`{"email":"teacher@demo.com","password":"demo123","role":"teacher","firstName":"Jane","lastName":"Smith"}`)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("ожидали 409, получили %d", resp.StatusCode)
		}
	})

	t.Run("выход очищает сессию", func(t *testing.T) {
		if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", ""); resp.StatusCode != http.StatusNoContent {
			t.Fatalf("код %d", resp.StatusCode)
		}
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("после выхода ожидали 404, получили %d", resp.StatusCode)
		}
	})
}

func TestExportReport(t *testing.T) {
	srv := newServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/export/report", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("код %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("неожиданный Content-Type: %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "performance-report-") {
		t.Fatalf("неожиданный Content-Disposition: %s", cd)
	}
	// xlsx — это zip: сигнатура PK
	if len(body) < 2 || body[0] != 'P' || body[1] != 'K' {
		t.Fatal("ответ не похож на xlsx")
	}
}
