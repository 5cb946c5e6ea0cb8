package models

import "fmt"

type CoordinatePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is a stop of the transit database or a synthetic off-network point.
// Synthetic places carry an id derived from their coordinates.
type Place struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

func NewStopPlace(id, name string, lat, lon float64) Place {
	return Place{ID: id, Name: name, Lat: lat, Lon: lon}
}

// NewSyntheticPlace creates an off-network place for the given coordinates.
func NewSyntheticPlace(lat, lon float64) Place {
	return Place{
		ID:        SyntheticPlaceID(lat, lon),
		Lat:       lat,
		Lon:       lon,
		Synthetic: true,
	}
}

func SyntheticPlaceID(lat, lon float64) string {
	return fmt.Sprintf("coord:%.6f,%.6f", lat, lon)
}

func (p Place) Point() CoordinatePoint {
	return CoordinatePoint{Lat: p.Lat, Lon: p.Lon}
}

func ComparePoints(a, b CoordinatePoint) int {
	if a.Lat < b.Lat {
		return -1
	}
	if a.Lat > b.Lat {
		return 1
	}
	if a.Lon < b.Lon {
		return -1
	}
	if a.Lon > b.Lon {
		return 1
	}
	return 0
}
