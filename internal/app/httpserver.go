package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Spok95/school-dashboard/internal/ctxutil"
	"github.com/Spok95/school-dashboard/internal/metrics"
	"github.com/Spok95/school-dashboard/internal/storage"
)

type HTTPServer struct {
	srv *http.Server
}

// StartHTTP поднимает сервер с API, /healthz и /metrics и гасит его по
// отмене ctx.
func StartHTTP(ctx context.Context, addr string, api *API, store storage.Store) *HTTPServer {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := ctxutil.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if _, err := store.Keys(ctx); err != nil {
			http.Error(w, "store not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveStorePing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", api.Router())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			api.Log.Errorw("http-сервер остановился", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
