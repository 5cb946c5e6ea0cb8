package gtfsdb

import "database/sql"

type Route struct {
	ID        string
	ShortName sql.NullString
	LongName  sql.NullString
}

type Stop struct {
	ID   string
	Name sql.NullString
	Lat  float64
	Lon  float64
}

type Trip struct {
	ID       string
	RouteID  string
	Headsign sql.NullString
}

// StopTime times are seconds since the start of the service day.
type StopTime struct {
	TripID        string
	StopID        string
	StopSequence  int64
	ArrivalTime   int64
	DepartureTime int64
}

type ImportMetadata struct {
	FileHash   string
	Source     string
	ImportTime int64
}
