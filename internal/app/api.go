package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/analytics"
	"github.com/Spok95/school-dashboard/internal/auth"
	"github.com/Spok95/school-dashboard/internal/export"
	"github.com/Spok95/school-dashboard/internal/metrics"
	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/observability"
	"github.com/Spok95/school-dashboard/internal/repo"
	"github.com/Spok95/school-dashboard/internal/storage"
)

// API — REST-поверхность для браузерного дашборда. Клиент ничего не
// кеширует и перечитывает данные после каждой мутации.
type API struct {
	Students    *repo.Students
	Classes     *repo.Classes
	Assignments *repo.Assignments
	Activities  *repo.Activities
	Goals       *repo.Goals
	Engine      *analytics.Engine
	Gate        *auth.Gate
	Log         *zap.SugaredLogger
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(a.observe)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.login)
		r.Post("/auth/register", a.register)
		r.Post("/auth/logout", a.logout)
		r.Get("/auth/me", a.me)

		r.Get("/students", a.listStudents)
		r.Get("/students/{id}", a.getStudent)
		r.Put("/students/{id}/grades/{assignment}", a.setGrade)
		r.Put("/students/{id}/attendance", a.setAttendance)

		r.Get("/classes", a.listClasses)
		r.Get("/classes/{id}/students", a.classStudents)

		r.Get("/assignments", a.listAssignments)
		r.Get("/activities", a.listActivities)

		r.Get("/goals", a.listGoals)
		r.Post("/goals", a.createGoal)
		r.Put("/goals/{id}", a.updateGoal)
		r.Delete("/goals/{id}", a.deleteGoal)

		r.Get("/stats/overall", a.overallStats)
		r.Get("/stats/class/{id}", a.classStats)
		r.Get("/interventions", a.interventions)

		r.Get("/export/report", a.exportReport)
	})
	return r
}

// observe — метрики и лог запроса.
func (a *API) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPDuration.Observe(time.Since(start).Seconds())
		a.Log.Debugw("http", "method", r.Method, "route", route, "code", ww.Status(), "took", time.Since(start))
	})
}

// --- auth ---

type loginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	u, err := a.Gate.SignIn(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, u)
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	created, err := a.Gate.Register(r.Context(), u)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, created)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Gate.Logout(r.Context()); err != nil {
		a.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	u, err := a.Gate.Current(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, u)
}

// --- students ---

func (a *API) listStudents(w http.ResponseWriter, r *http.Request) {
	list, err := a.Students.All(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) getStudent(w http.ResponseWriter, r *http.Request) {
	st, err := a.Students.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, st)
}

type gradeRequest struct {
	Score int `json:"score"`
}

func (a *API) setGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err := a.Students.SetGrade(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "assignment"), req.Score)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attendanceRequest struct {
	Date   string                  `json:"date"`
	Status models.AttendanceStatus `json:"status"`
}

func (a *API) setAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err := a.Students.SetAttendance(r.Context(), chi.URLParam(r, "id"), req.Date, req.Status)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- classes / assignments / activities ---

func (a *API) listClasses(w http.ResponseWriter, r *http.Request) {
	list, err := a.Classes.All(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) classStudents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := a.Classes.ByID(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	list, err := a.Classes.Students(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) listAssignments(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.Assignment
		err  error
	)
	if classID := r.URL.Query().Get("class"); classID != "" {
		list, err = a.Assignments.ByClass(r.Context(), classID)
	} else {
		list, err = a.Assignments.All(r.Context())
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) listActivities(w http.ResponseWriter, r *http.Request) {
	list, err := a.Activities.List(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

// --- goals ---

func (a *API) listGoals(w http.ResponseWriter, r *http.Request) {
	list, err := a.Goals.List(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) createGoal(w http.ResponseWriter, r *http.Request) {
	var g models.Goal
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	g.ID = "" // id назначает репозиторий
	created, err := a.Goals.Save(r.Context(), g)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, created)
}

func (a *API) updateGoal(w http.ResponseWriter, r *http.Request) {
	var g models.Goal
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	g.ID = chi.URLParam(r, "id")

	// Save не проверяет существование при непустом ID — апдейтом не
	// должен создаваться новый объект, поэтому проверяем здесь
	list, err := a.Goals.List(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	found := false
	for _, e := range list {
		if e.ID == g.ID {
			found = true
			break
		}
	}
	if !found {
		a.writeErr(w, storage.ErrNotFound)
		return
	}

	saved, err := a.Goals.Save(r.Context(), g)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, saved)
}

func (a *API) deleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := a.Goals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- analytics ---

func (a *API) overallStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Engine.OverallStatistics(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, stats)
}

func (a *API) classStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Engine.ClassStatistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, stats)
}

func (a *API) interventions(w http.ResponseWriter, r *http.Request) {
	list, err := a.Engine.Interventions(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if list == nil {
		list = []analytics.Intervention{}
	}
	a.writeJSON(w, http.StatusOK, list)
}

// --- export ---

func (a *API) exportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	students, err := a.Students.All(ctx)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	classes, err := a.Classes.All(ctx)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	rows := make([]export.ClassRow, 0, len(classes))
	for _, c := range classes {
		stats, err := a.Engine.ClassStatistics(ctx, c.ID)
		if err != nil {
			a.writeErr(w, err)
			return
		}
		rows = append(rows, export.ClassRow{Class: c, Stats: stats})
	}
	interventions, err := a.Engine.Interventions(ctx)
	if err != nil {
		a.writeErr(w, err)
		return
	}

	wb, err := export.NewPerformanceWorkbook(students, rows, interventions)
	if err != nil {
		a.writeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.BuildReportFilename(time.Now())+`"`)
	if err := wb.File.Write(w); err != nil {
		a.Log.Warnw("не удалось отдать отчёт", "err", err)
	}
}

// --- helpers ---

func (a *API) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Log.Warnw("кодирование ответа", "err", err)
	}
}

func (a *API) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, auth.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		metrics.HandlerErrors.Inc()
		observability.CaptureErr(err)
		a.Log.Errorw("внутренняя ошибка", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
