package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		errMsg  string
	}{
		{name: "valid simple ID", id: "stop_123"},
		{name: "valid ID with hyphens and dots", id: "stop-123.north"},
		{name: "synthetic place ID", id: "coord:47.600000,-122.330000"},
		{name: "empty ID", id: "", wantErr: true, errMsg: "id cannot be empty"},
		{name: "ID too long", id: strings.Repeat("a", 101), wantErr: true, errMsg: "id too long (max 100 characters)"},
		{name: "ID with markup", id: "stop_123<script>", wantErr: true, errMsg: "id contains invalid characters"},
		{name: "ID with SQL injection attempt", id: "stop_'; DROP TABLE stops; --", wantErr: true, errMsg: "id contains invalid characters"},
		{name: "ID with path traversal", id: "../../../etc/passwd", wantErr: true, errMsg: "id contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLatitude(t *testing.T) {
	assert.NoError(t, ValidateLatitude(38.9072))
	assert.NoError(t, ValidateLatitude(90))
	assert.NoError(t, ValidateLatitude(-90))
	assert.EqualError(t, ValidateLatitude(90.1), "latitude must be between -90 and 90")
	assert.EqualError(t, ValidateLatitude(-180), "latitude must be between -90 and 90")
	assert.EqualError(t, ValidateLatitude(math.NaN()), "latitude must be a finite number")
	assert.EqualError(t, ValidateLatitude(math.Inf(-1)), "latitude must be a finite number")
}

func TestValidateLongitude(t *testing.T) {
	assert.NoError(t, ValidateLongitude(-77.0369))
	assert.NoError(t, ValidateLongitude(180))
	assert.NoError(t, ValidateLongitude(-180))
	assert.EqualError(t, ValidateLongitude(180.1), "longitude must be between -180 and 180")
	assert.EqualError(t, ValidateLongitude(360), "longitude must be between -180 and 180")
	assert.EqualError(t, ValidateLongitude(math.NaN()), "longitude must be a finite number")
	assert.EqualError(t, ValidateLongitude(math.Inf(1)), "longitude must be a finite number")
}

func TestParseLocation(t *testing.T) {
	t.Run("coordinate pair", func(t *testing.T) {
		lat, lon, ok, err := ParseLocation("47.6, -122.33")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 47.6, lat)
		assert.Equal(t, -122.33, lon)
	})

	t.Run("stop id", func(t *testing.T) {
		_, _, ok, err := ParseLocation("stop_1")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("id containing a comma", func(t *testing.T) {
		_, _, ok, err := ParseLocation("a,b")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		_, _, ok, err := ParseLocation("91,0")
		assert.True(t, ok)
		assert.EqualError(t, err, "latitude must be between -90 and 90")

		_, _, ok, err = ParseLocation("0,181")
		assert.True(t, ok)
		assert.EqualError(t, err, "longitude must be between -180 and 180")
	})

	t.Run("not a number", func(t *testing.T) {
		_, _, ok, err := ParseLocation("NaN,NaN")
		assert.True(t, ok)
		assert.EqualError(t, err, "latitude must be a finite number")

		_, _, ok, err = ParseLocation("0,+Inf")
		assert.True(t, ok)
		assert.EqualError(t, err, "longitude must be a finite number")
	})
}
