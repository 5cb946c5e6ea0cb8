package walkmode

import (
	"context"
	"math"
	"time"

	"planner.onebusaway.org/internal/models"
)

const (
	KindTransfer = "transfer"

	defaultTimeNeeded = 180 * time.Second
)

// TransferModel charges a fixed time for changing vehicles inside a station.
// Coordinates are ignored.
type TransferModel struct {
	timeNeeded time.Duration
}

func NewTransferModel(timeNeeded time.Duration) *TransferModel {
	return &TransferModel{timeNeeded: timeNeeded}
}

func (m *TransferModel) TimeBetween(_ context.Context, _, _ models.Place) (time.Duration, error) {
	return m.timeNeeded, nil
}

func (m *TransferModel) Range() float64 {
	return 0
}

func (m *TransferModel) Identifier() string {
	return encodeDescriptor(KindTransfer, numberField(keyTimeNeeded, m.timeNeeded.Seconds()))
}

func buildTransfer(_ *Service, p Params, _, _ []models.Place) (CostModel, error) {
	seconds, err := p.Seconds(keyTimeNeeded, defaultTimeNeeded.Seconds())
	if err != nil {
		return nil, err
	}
	return NewTransferModel(time.Duration(math.Round(seconds*1000)) * time.Millisecond), nil
}
