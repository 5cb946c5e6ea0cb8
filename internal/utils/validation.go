package utils

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Allow alphanumeric, underscore, hyphen, dot, colon - common in transit IDs
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return errors.New("latitude must be a finite number")
	}
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return errors.New("longitude must be a finite number")
	}
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ParseLocation reads a "lat,lon" pair. ok is false when value is not a
// coordinate pair, in which case it should be treated as a stop id. err
// reports a pair whose values are out of range.
func ParseLocation(value string) (lat, lon float64, ok bool, err error) {
	latText, lonText, found := strings.Cut(value, ",")
	if !found {
		return 0, 0, false, nil
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false, nil
	}
	if err := ValidateLatitude(lat); err != nil {
		return 0, 0, true, err
	}
	if err := ValidateLongitude(lon); err != nil {
		return 0, 0, true, err
	}
	return lat, lon, true, nil
}
