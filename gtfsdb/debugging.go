package gtfsdb

import (
	"context"
	"fmt"

	"github.com/jamespfennell/gtfs"
)

func staticDataCounts(staticData *gtfs.Static) map[string]int {
	stopTimes := 0
	for _, t := range staticData.Trips {
		stopTimes += len(t.StopTimes)
	}
	return map[string]int{
		"routes":     len(staticData.Routes),
		"stops":      len(staticData.Stops),
		"trips":      len(staticData.Trips),
		"stop_times": stopTimes,
	}
}

// TableCounts returns the row count of every user table.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to query table names: %w", err)
	}
	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := c.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, err
		}
		counts[table] = count
	}
	return counts, nil
}
