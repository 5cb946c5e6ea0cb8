package walkmode

import (
	"context"
	"fmt"
	"time"

	"planner.onebusaway.org/internal/models"
	"planner.onebusaway.org/internal/utils"
)

const (
	KindCrowsFlight = "crowsflight"

	defaultMaxDistance = 500.0
	defaultSpeed       = 1.4

	// maxHopDistance bounds any great-circle hop (half the equator, in meters).
	maxHopDistance = 20_037_509.0
	// minSpeed keeps the slowest hop within maxSeconds.
	minSpeed = maxHopDistance / maxSeconds
)

// CrowsFlightModel estimates hops as great-circle distance at constant speed.
type CrowsFlightModel struct {
	maxDistance float64
	speed       float64
}

func NewCrowsFlightModel(maxDistance, speed float64) *CrowsFlightModel {
	return &CrowsFlightModel{maxDistance: maxDistance, speed: speed}
}

func (m *CrowsFlightModel) TimeBetween(_ context.Context, from, to models.Place) (time.Duration, error) {
	distance := utils.Haversine(from.Lat, from.Lon, to.Lat, to.Lon)
	return roundSeconds(distance / m.speed), nil
}

func (m *CrowsFlightModel) Range() float64 {
	return m.maxDistance
}

func (m *CrowsFlightModel) Identifier() string {
	return encodeDescriptor(KindCrowsFlight,
		numberField(keyMaxDistance, m.maxDistance),
		numberField(keySpeed, m.speed))
}

func buildCrowsFlight(_ *Service, p Params, _, _ []models.Place) (CostModel, error) {
	maxDistance, err := p.Float(keyMaxDistance, defaultMaxDistance)
	if err != nil {
		return nil, err
	}
	speed, err := p.Float(keySpeed, defaultSpeed)
	if err != nil {
		return nil, err
	}
	if speed == 0 {
		return nil, fmt.Errorf("%w: speed must be positive", ErrMalformedDescriptor)
	}
	if speed < minSpeed {
		return nil, fmt.Errorf("%w: speed below %g m/s", ErrMalformedDescriptor, minSpeed)
	}
	return NewCrowsFlightModel(maxDistance, speed), nil
}
