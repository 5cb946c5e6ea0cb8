package gtfsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"planner.onebusaway.org/internal/logging"
)

var (
	// ErrNotFound is returned when a stop or trip id is not in the store.
	ErrNotFound = errors.New("not found")

	errFileDatabaseInTest = errors.New("test database must use in-memory storage")
)

// Client is the main entry point for the library
type Client struct {
	config        Config
	DB            *sql.DB
	Queries       *Queries
	logger        *slog.Logger
	httpClient    *http.Client
	importRuntime time.Duration
}

// NewClient opens the database and applies the schema.
func NewClient(config Config) (*Client, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "gtfsdb"))

	db, err := createDB(config)
	if err != nil {
		return nil, err
	}
	if config.Verbose {
		logging.LogOperation(logger, "database_schema_ready", slog.String("path", config.DBPath))
	}

	return &Client{
		config:     config,
		DB:         db,
		Queries:    New(db),
		logger:     logger,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime reports how long the last import took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// DownloadAndStore downloads GTFS data from the given URL and stores it in the database
func (c *Client) DownloadAndStore(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "gtfs_download_body")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return c.processAndStoreGTFSDataWithSource(ctx, b, url)
}

// ImportFromFile imports GTFS data from a local zip file into the database
func (c *Client) ImportFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return c.processAndStoreGTFSDataWithSource(ctx, data, path)
}

func (c *Client) GetStop(ctx context.Context, id string) (Stop, error) {
	stop, err := c.Queries.GetStop(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Stop{}, fmt.Errorf("%w: stop %s", ErrNotFound, id)
	}
	return stop, err
}

func (c *Client) GetTrip(ctx context.Context, id string) (GetTripRow, error) {
	trip, err := c.Queries.GetTrip(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return GetTripRow{}, fmt.Errorf("%w: trip %s", ErrNotFound, id)
	}
	return trip, err
}

// StopEventCounts returns, per stop, how many scheduled stop times touch it.
func (c *Client) StopEventCounts(ctx context.Context) (map[string]uint32, error) {
	rows, err := c.Queries.CountStopEvents(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]uint32, len(rows))
	for _, r := range rows {
		counts[r.StopID] = uint32(r.Events)
	}
	return counts, nil
}
