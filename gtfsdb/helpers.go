package gtfsdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
	"planner.onebusaway.org/internal/appconf"
	"planner.onebusaway.org/internal/logging"
)

//go:embed schema.sql
var ddl string

// createDB creates a new SQLite database with tables for static GTFS data
func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("%w: got %s", errFileDatabaseInTest, config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, err
	}

	if config.DBPath == ":memory:" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()
	if err := performDatabaseMigration(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	return db, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate")
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

// processAndStoreGTFSDataWithSource parses a GTFS zip and replaces the stored
// data with it. The import is skipped when the same bytes were imported last.
func (c *Client) processAndStoreGTFSDataWithSource(ctx context.Context, b []byte, source string) error {
	sum := sha256.Sum256(b)
	hash := hex.EncodeToString(sum[:])

	previous, err := c.Queries.GetImportMetadata(ctx)
	switch {
	case err == nil && previous.FileHash == hash:
		logging.LogOperation(c.logger, "gtfs_import_skipped_unchanged",
			slog.String("source", source),
			slog.String("hash", hash))
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("reading import metadata: %w", err)
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("parsing GTFS from %s: %w", source, err)
	}

	if c.config.Verbose {
		attrs := []slog.Attr{slog.Int("warnings", len(staticData.Warnings))}
		for k, v := range staticDataCounts(staticData) {
			attrs = append(attrs, slog.Int(k, v))
		}
		logging.LogOperation(c.logger, "gtfs_static_parsed", attrs...)
	}

	if err := c.ImportStatic(ctx, staticData); err != nil {
		return err
	}

	return c.Queries.UpsertImportMetadata(ctx, ImportMetadata{
		FileHash:   hash,
		Source:     source,
		ImportTime: time.Now().Unix(),
	})
}

// ImportStatic replaces the stored routes, stops, trips and stop times with
// those of staticData in one transaction. Stops without coordinates are
// skipped.
func (c *Client) ImportStatic(ctx context.Context, staticData *gtfs.Static) (err error) {
	startTime := time.Now()
	defer func() {
		c.importRuntime = time.Since(startTime)
		if err == nil {
			logging.LogOperation(c.logger, "gtfs_static_imported",
				slog.Int("stops", len(staticData.Stops)),
				slog.Int("trips", len(staticData.Trips)),
				slog.Duration("duration", c.importRuntime))
		}
	}()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "gtfs_static_import")

	qtx := c.Queries.WithTx(tx)
	if err := qtx.ClearStaticData(ctx); err != nil {
		return fmt.Errorf("clearing previous data: %w", err)
	}

	for _, r := range staticData.Routes {
		err := qtx.CreateRoute(ctx, CreateRouteParams{
			ID:        r.Id,
			ShortName: toNullString(r.ShortName),
			LongName:  toNullString(r.LongName),
		})
		if err != nil {
			return fmt.Errorf("error inserting route %s: %w", r.Id, err)
		}
	}

	skipped := 0
	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			skipped++
			continue
		}
		err := qtx.CreateStop(ctx, CreateStopParams{
			ID:   s.Id,
			Name: toNullString(s.Name),
			Lat:  *s.Latitude,
			Lon:  *s.Longitude,
		})
		if err != nil {
			return fmt.Errorf("error inserting stop %s: %w", s.Id, err)
		}
	}
	if skipped > 0 {
		c.logger.Warn("skipped stops without coordinates", slog.Int("count", skipped))
	}

	for _, t := range staticData.Trips {
		routeID := ""
		if t.Route != nil {
			routeID = t.Route.Id
		}
		err := qtx.CreateTrip(ctx, CreateTripParams{
			ID:       t.ID,
			RouteID:  routeID,
			Headsign: toNullString(t.Headsign),
		})
		if err != nil {
			return fmt.Errorf("error inserting trip %s: %w", t.ID, err)
		}

		for _, st := range t.StopTimes {
			if st.Stop == nil {
				continue
			}
			err := qtx.CreateStopTime(ctx, CreateStopTimeParams{
				TripID:        t.ID,
				StopID:        st.Stop.Id,
				StopSequence:  int64(st.StopSequence),
				ArrivalTime:   int64(st.ArrivalTime / time.Second),
				DepartureTime: int64(st.DepartureTime / time.Second),
			})
			if err != nil {
				return fmt.Errorf("error inserting stop_time %s/%d: %w", t.ID, st.StopSequence, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// toNullString converts a string to sql.NullString
func toNullString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}
