package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nyc-osyd/atlas-cli/internal/fetcher"
	"github.com/nyc-osyd/atlas-cli/internal/geo"
	"github.com/nyc-osyd/atlas-cli/internal/loader"
	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

// openSnapshotStore opens the configured snapshot cache backend and runs
// migrations. Caller closes it.
func openSnapshotStore(ctx context.Context) (store.SnapshotStore, error) {
	var (
		st  store.SnapshotStore
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.Path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func sourceMapping() (loader.Mapping, error) {
	if cfg.Source.MappingPath == "" {
		return loader.DefaultMapping(), nil
	}
	return loader.LoadMapping(cfg.Source.MappingPath)
}

func newHTTPFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Source.UserAgent,
		Timeout:   time.Duration(cfg.Source.TimeoutSecs) * time.Second,
	})
}

// buildStoreFromSource fetches the upstream workbook and builds a fresh
// snapshot: schools, participant detail, and shapefile district backfill.
func buildStoreFromSource(ctx context.Context) (*store.EntityStore, loader.Report, error) {
	var report loader.Report
	if cfg.Source.Workbook == "" {
		return nil, report, eris.New("no source.workbook configured")
	}

	m, err := sourceMapping()
	if err != nil {
		return nil, report, err
	}
	hf := newHTTPFetcher()

	rows, err := fetcher.Rows(ctx, fetcher.Source{
		Path:     cfg.Source.Workbook,
		Format:   cfg.Source.Format,
		Sheet:    cfg.Source.Sheet,
		SkipRows: cfg.Source.SkipRows,
	}, hf)
	if err != nil {
		return nil, report, err
	}

	entities, report, err := loader.Schools(rows, m)
	if err != nil {
		return nil, report, err
	}

	// Participant detail lives on a second sheet, so it only applies to
	// XLSX workbooks. A missing sheet degrades to entities without detail.
	isXLSX := strings.EqualFold(cfg.Source.Format, "xlsx") ||
		(cfg.Source.Format == "" && strings.Contains(strings.ToLower(cfg.Source.Workbook), ".xlsx"))
	if cfg.Source.ParticipantSheet != "" && isXLSX {
		prows, perr := fetcher.Rows(ctx, fetcher.Source{
			Path:     cfg.Source.Workbook,
			Format:   cfg.Source.Format,
			Sheet:    cfg.Source.ParticipantSheet,
			SkipRows: cfg.Source.SkipRows,
		}, hf)
		if perr != nil {
			zap.L().Warn("participant sheet not loaded", zap.Error(perr))
		} else if preport, perr := loader.Participants(prows, m, entities); perr != nil {
			zap.L().Warn("participant rows not attached", zap.Error(perr))
		} else {
			zap.L().Info("participants attached",
				zap.Int("attached", preport.Loaded),
				zap.Int("excluded", preport.Excluded),
			)
		}
	}

	if cfg.Geo.DistrictShapefile != "" {
		districts, derr := geo.LoadDistricts(cfg.Geo.DistrictShapefile)
		if derr != nil {
			zap.L().Warn("district shapefile not loaded", zap.Error(derr))
		} else if assigned := geo.AssignDistricts(entities, districts); assigned > 0 {
			zap.L().Info("districts backfilled from shapefile", zap.Int("assigned", assigned))
		}
	}

	return store.New(entities, time.Now()), report, nil
}

// loadCachedStore builds the snapshot from the cache written by `atlas
// load`.
func loadCachedStore(ctx context.Context) (*store.EntityStore, error) {
	snap, err := openSnapshotStore(ctx)
	if err != nil {
		return nil, err
	}
	defer snap.Close() //nolint:errcheck

	entities, loadedAt, err := snap.LoadSnapshot(ctx)
	if err != nil {
		if eris.Is(err, store.ErrNoSnapshot) {
			return nil, eris.New("no cached snapshot; run `atlas load` first")
		}
		return nil, err
	}
	return store.New(entities, loadedAt), nil
}

func defaultCriteria() model.PriorityCriteria {
	return model.PriorityCriteria{
		HighSTH:          cfg.Priority.HighSTH,
		HighENI:          cfg.Priority.HighENI,
		Untrained:        cfg.Priority.Untrained,
		FundamentalsOnly: cfg.Priority.FundamentalsOnly,
	}
}

// addFilterFlags registers the shared subset filter flags.
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("borough", "", "filter by borough")
	f.String("district", "", "filter by district id")
	f.String("superintendent", "", "filter by superintendent")
	f.String("school-type", "", "filter by school type")
	f.String("status", "", "filter by training status (complete, fundamentals_only, none)")
}

func filterFromFlags(cmd *cobra.Command) (model.FilterState, error) {
	borough, _ := cmd.Flags().GetString("borough")
	district, _ := cmd.Flags().GetString("district")
	superintendent, _ := cmd.Flags().GetString("superintendent")
	schoolType, _ := cmd.Flags().GetString("school-type")
	status, _ := cmd.Flags().GetString("status")

	if status != "" && !model.TrainingStatus(status).Valid() {
		return model.FilterState{}, eris.Errorf("invalid --status %q", status)
	}

	return model.FilterState{
		Borough:          strings.ToUpper(borough),
		DistrictID:       district,
		SuperintendentID: superintendent,
		SchoolType:       schoolType,
		TrainingStatus:   model.TrainingStatus(status),
	}, nil
}
