package gtfsdb

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

var clearStaticData = []string{
	`DELETE FROM stop_times`,
	`DELETE FROM trips`,
	`DELETE FROM stops`,
	`DELETE FROM routes`,
}

func (q *Queries) ClearStaticData(ctx context.Context) error {
	for _, stmt := range clearStaticData {
		if _, err := q.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const createRoute = `
INSERT OR REPLACE INTO routes (id, short_name, long_name)
VALUES (?, ?, ?)
`

type CreateRouteParams struct {
	ID        string
	ShortName sql.NullString
	LongName  sql.NullString
}

func (q *Queries) CreateRoute(ctx context.Context, arg CreateRouteParams) error {
	_, err := q.db.ExecContext(ctx, createRoute, arg.ID, arg.ShortName, arg.LongName)
	return err
}

const createStop = `
INSERT OR REPLACE INTO stops (id, name, lat, lon)
VALUES (?, ?, ?, ?)
`

type CreateStopParams struct {
	ID   string
	Name sql.NullString
	Lat  float64
	Lon  float64
}

func (q *Queries) CreateStop(ctx context.Context, arg CreateStopParams) error {
	_, err := q.db.ExecContext(ctx, createStop, arg.ID, arg.Name, arg.Lat, arg.Lon)
	return err
}

const createTrip = `
INSERT OR REPLACE INTO trips (id, route_id, headsign)
VALUES (?, ?, ?)
`

type CreateTripParams struct {
	ID       string
	RouteID  string
	Headsign sql.NullString
}

func (q *Queries) CreateTrip(ctx context.Context, arg CreateTripParams) error {
	_, err := q.db.ExecContext(ctx, createTrip, arg.ID, arg.RouteID, arg.Headsign)
	return err
}

const createStopTime = `
INSERT OR REPLACE INTO stop_times (trip_id, stop_id, stop_sequence, arrival_time, departure_time)
VALUES (?, ?, ?, ?, ?)
`

type CreateStopTimeParams struct {
	TripID        string
	StopID        string
	StopSequence  int64
	ArrivalTime   int64
	DepartureTime int64
}

func (q *Queries) CreateStopTime(ctx context.Context, arg CreateStopTimeParams) error {
	_, err := q.db.ExecContext(ctx, createStopTime,
		arg.TripID, arg.StopID, arg.StopSequence, arg.ArrivalTime, arg.DepartureTime)
	return err
}

const getStop = `
SELECT id, name, lat, lon FROM stops WHERE id = ?
`

func (q *Queries) GetStop(ctx context.Context, id string) (Stop, error) {
	row := q.db.QueryRowContext(ctx, getStop, id)
	var i Stop
	err := row.Scan(&i.ID, &i.Name, &i.Lat, &i.Lon)
	return i, err
}

const getTrip = `
SELECT t.id, t.route_id, t.headsign, r.short_name
FROM trips t
LEFT JOIN routes r ON r.id = t.route_id
WHERE t.id = ?
`

type GetTripRow struct {
	ID             string
	RouteID        string
	Headsign       sql.NullString
	RouteShortName sql.NullString
}

func (q *Queries) GetTrip(ctx context.Context, id string) (GetTripRow, error) {
	row := q.db.QueryRowContext(ctx, getTrip, id)
	var i GetTripRow
	err := row.Scan(&i.ID, &i.RouteID, &i.Headsign, &i.RouteShortName)
	return i, err
}

const getStopTimesForTrip = `
SELECT trip_id, stop_id, stop_sequence, arrival_time, departure_time
FROM stop_times
WHERE trip_id = ?
ORDER BY stop_sequence
`

func (q *Queries) GetStopTimesForTrip(ctx context.Context, tripID string) ([]StopTime, error) {
	rows, err := q.db.QueryContext(ctx, getStopTimesForTrip, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck
	var items []StopTime
	for rows.Next() {
		var i StopTime
		if err := rows.Scan(&i.TripID, &i.StopID, &i.StopSequence, &i.ArrivalTime, &i.DepartureTime); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countStopEvents = `
SELECT stop_id, COUNT(*) AS events
FROM stop_times
GROUP BY stop_id
`

type CountStopEventsRow struct {
	StopID string
	Events int64
}

func (q *Queries) CountStopEvents(ctx context.Context) ([]CountStopEventsRow, error) {
	rows, err := q.db.QueryContext(ctx, countStopEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck
	var items []CountStopEventsRow
	for rows.Next() {
		var i CountStopEventsRow
		if err := rows.Scan(&i.StopID, &i.Events); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getImportMetadata = `
SELECT file_hash, source, import_time FROM import_metadata WHERE id = 1
`

func (q *Queries) GetImportMetadata(ctx context.Context) (ImportMetadata, error) {
	row := q.db.QueryRowContext(ctx, getImportMetadata)
	var i ImportMetadata
	err := row.Scan(&i.FileHash, &i.Source, &i.ImportTime)
	return i, err
}

const upsertImportMetadata = `
INSERT OR REPLACE INTO import_metadata (id, file_hash, source, import_time)
VALUES (1, ?, ?, ?)
`

func (q *Queries) UpsertImportMetadata(ctx context.Context, arg ImportMetadata) error {
	_, err := q.db.ExecContext(ctx, upsertImportMetadata, arg.FileHash, arg.Source, arg.ImportTime)
	return err
}
