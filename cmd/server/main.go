package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Spok95/school-dashboard/internal/analytics"
	"github.com/Spok95/school-dashboard/internal/app"
	"github.com/Spok95/school-dashboard/internal/auth"
	"github.com/Spok95/school-dashboard/internal/config"
	"github.com/Spok95/school-dashboard/internal/jobs"
	"github.com/Spok95/school-dashboard/internal/logging"
	"github.com/Spok95/school-dashboard/internal/observability"
	"github.com/Spok95/school-dashboard/internal/remote"
	"github.com/Spok95/school-dashboard/internal/repo"
	"github.com/Spok95/school-dashboard/internal/seed"
	"github.com/Spok95/school-dashboard/internal/storage"
	"github.com/Spok95/school-dashboard/internal/storage/filestore"
	"github.com/Spok95/school-dashboard/internal/storage/pgstore"
	"github.com/Spok95/school-dashboard/internal/tg"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		lg.Sugar.Warnw("sentry не инициализирован", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// хранилище: Postgres при заданном DATABASE_URL, иначе файл
	var store storage.Store
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			lg.Sugar.Fatalw("подключение к БД", "err", err)
		}
		defer func() { _ = pg.Close() }()
		if err := pg.Migrate(); err != nil {
			lg.Sugar.Fatalw("миграция не удалась", "err", err)
		}
		store = pg
		lg.Sugar.Infow("хранилище: postgres")
	} else {
		fs, err := filestore.Open(cfg.DataPath)
		if err != nil {
			lg.Sugar.Fatalw("открытие файлового хранилища", "path", cfg.DataPath, "err", err)
		}
		store = fs
		lg.Sugar.Infow("хранилище: файл", "path", cfg.DataPath)
	}

	if err := seed.Run(ctx, store, lg.Sugar, seed.Options{DefaultRate: cfg.AttendanceRate}); err != nil {
		lg.Sugar.Fatalw("заливка демо-данных", "err", err)
	}

	acts := repo.NewActivities(store, lg.Sugar)
	students := repo.NewStudents(store, lg.Sugar, acts)
	classes := repo.NewClasses(store, lg.Sugar, students)
	assignments := repo.NewAssignments(store, lg.Sugar)
	goals := repo.NewGoals(store, lg.Sugar)
	users := repo.NewUsers(store, lg.Sugar)
	engine := analytics.New(students)
	gate := auth.NewGate(users, remote.New(cfg.SupabaseURL, cfg.SupabaseAnonKey), lg.Sugar)

	notifier, err := tg.NewNotifier(cfg.BotToken, cfg.AlertChatIDs)
	if err != nil {
		lg.Sugar.Warnw("телеграм-уведомления выключены", "err", err)
	}

	runner := jobs.New(ctx)
	scanner := jobs.NewAtRiskScanner(engine, acts, notifier, lg.Sugar)
	runner.Every(cfg.ScanInterval, "atrisk_scan", scanner.Run)

	api := &app.API{
		Students:    students,
		Classes:     classes,
		Assignments: assignments,
		Activities:  acts,
		Goals:       goals,
		Engine:      engine,
		Gate:        gate,
		Log:         lg.Sugar,
	}
	app.StartHTTP(ctx, cfg.HTTPAddr, api, store)
	lg.Sugar.Infow("сервер запущен", "addr", cfg.HTTPAddr, "env", cfg.Env)

	<-ctx.Done()
	lg.Sugar.Infow("останавливаемся")
}
