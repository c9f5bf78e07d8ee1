package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nyc-osyd/atlas-cli/internal/export"
	"github.com/nyc-osyd/atlas-cli/internal/geo"
	"github.com/nyc-osyd/atlas-cli/internal/mapsync"
	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
	"github.com/nyc-osyd/atlas-cli/internal/view"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := startupStore(ctx)
		if err != nil {
			return err
		}

		api := &apiServer{
			session: view.NewSession(store.NewHolder(s), defaultCriteria()),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if cfg.Refresh.IntervalMins > 0 {
			g.Go(func() error {
				api.refreshLoop(ctx, time.Duration(cfg.Refresh.IntervalMins)*time.Minute)
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// startupStore prefers the cached snapshot and falls back to a fresh
// source build when none exists yet.
func startupStore(ctx context.Context) (*store.EntityStore, error) {
	s, err := loadCachedStore(ctx)
	if err == nil {
		return s, nil
	}
	zap.L().Warn("no cached snapshot, building from source", zap.Error(err))

	s, report, err := buildStoreFromSource(ctx)
	if err != nil {
		return nil, err
	}
	if snap, serr := openSnapshotStore(ctx); serr == nil {
		defer snap.Close() //nolint:errcheck
		if serr := snap.SaveSnapshot(ctx, s.Entities(), s.LoadedAt()); serr != nil {
			zap.L().Warn("snapshot not cached", zap.Error(serr))
		}
	}
	zap.L().Info("snapshot built from source",
		zap.Int("schools", s.Len()),
		zap.Int("excluded", report.Excluded),
	)
	return s, nil
}

// apiServer holds the one interactive session plus the server-side mirror
// of the map surface's selection indicator.
type apiServer struct {
	session *view.Session

	mu        sync.Mutex
	indicator mapsync.IndicatorState
}

func (a *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/viewmodel", a.handleViewModel)
		r.Post("/events", a.handleEvent)
		r.Get("/districts", a.handleDistricts)
		r.Get("/export/priority.csv", a.handlePriorityCSV)
		r.Get("/export/schools.csv", a.handleSchoolsCSV)
	})

	return r
}

func (a *apiServer) handleViewModel(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, a.session.ViewModel())
}

type eventRequest struct {
	Type    string            `json:"type"`
	Filters model.FilterState `json:"filters"`
	ID      string            `json:"id"`
}

type eventResponse struct {
	State     view.ViewState   `json:"state"`
	Indicator mapsync.Mutation `json:"indicator"`
}

func (a *apiServer) handleEvent(w http.ResponseWriter, req *http.Request) {
	var er eventRequest
	if err := json.NewDecoder(req.Body).Decode(&er); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	ev, err := toEvent(er)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
		return
	}

	// The client owns the indicator widget; the server mirrors its state
	// and hands back the minimal mutation each event requires. Dispatch and
	// sync run under one lock so concurrent events cannot apply their sync
	// results out of dispatch order and leave the mirror on a superseded
	// selection.
	a.mu.Lock()
	state := a.session.Dispatch(ev)
	next, mutation := mapsync.Sync(state.SelectedID, a.session.Store(), a.indicator)
	a.indicator = next
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, eventResponse{State: state, Indicator: mutation})
}

func toEvent(er eventRequest) (view.Event, error) {
	switch er.Type {
	case "filter_changed":
		return view.FilterChanged{Filters: er.Filters}, nil
	case "marker_clicked":
		return view.MarkerClicked{ID: er.ID}, nil
	case "empty_area_clicked":
		return view.EmptyAreaClicked{}, nil
	case "back_pressed":
		return view.BackPressed{}, nil
	}
	return nil, eris.Errorf("unknown event type %q", er.Type)
}

func (a *apiServer) handleDistricts(w http.ResponseWriter, req *http.Request) {
	coverage, unassigned := geo.Aggregate(a.session.Store().Entities())
	writeJSON(w, http.StatusOK, map[string]any{
		"districts":  coverage,
		"unassigned": unassigned,
	})
}

func (a *apiServer) handlePriorityCSV(w http.ResponseWriter, req *http.Request) {
	vm := a.session.ViewModel()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="priority.csv"`)
	if err := export.WritePriorityCSV(w, vm.Priority); err != nil {
		zap.L().Error("priority export failed", zap.Error(err))
	}
}

func (a *apiServer) handleSchoolsCSV(w http.ResponseWriter, req *http.Request) {
	vm := a.session.ViewModel()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="schools.csv"`)
	if err := export.WriteEntitiesCSV(w, vm.Subset); err != nil {
		zap.L().Error("schools export failed", zap.Error(err))
	}
}

// refreshLoop rebuilds the snapshot on an interval and publishes it
// through the session, which re-validates any active selection.
func (a *apiServer) refreshLoop(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		s, report, err := buildStoreFromSource(ctx)
		if err != nil {
			zap.L().Warn("refresh failed, keeping current snapshot", zap.Error(err))
			continue
		}

		a.session.Reload(s)
		if snap, serr := openSnapshotStore(ctx); serr == nil {
			if serr := snap.SaveSnapshot(ctx, s.Entities(), s.LoadedAt()); serr != nil {
				zap.L().Warn("refreshed snapshot not cached", zap.Error(serr))
			}
			_ = snap.Close()
		}
		zap.L().Info("snapshot refreshed",
			zap.Int("schools", s.Len()),
			zap.Int("excluded", report.Excluded),
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("response encode failed", zap.Error(err))
	}
}
