// Package astro computes sun events, moon phase and time-of-day bands for
// the dock location.
package astro

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// SunEventTimes holds the calculated sun event times in UTC.
type SunEventTimes struct {
	CivilDawn time.Time
	Sunrise   time.Time
	Sunset    time.Time
	CivilDusk time.Time
}

// cacheEntry holds the cached sun event times for a given date.
type cacheEntry struct {
	times SunEventTimes
	date  time.Time
}

// SunCalc handles caching and calculation of sun event times.
type SunCalc struct {
	cache    map[string]cacheEntry
	lock     sync.RWMutex
	observer astral.Observer
}

// NewSunCalc creates a new SunCalc for the given coordinates.
func NewSunCalc(latitude, longitude float64) *SunCalc {
	return &SunCalc{
		cache:    make(map[string]cacheEntry),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
	}
}

// GetSunEventTimes returns the sun event times for a date, using the cache
// when available.
func (sc *SunCalc) GetSunEventTimes(date time.Time) (SunEventTimes, error) {
	dateKey := date.Format("2006-01-02")

	sc.lock.RLock()
	entry, exists := sc.cache[dateKey]
	sc.lock.RUnlock()

	if exists && entry.date.Equal(date) {
		return entry.times, nil
	}

	times, err := sc.calculateSunEventTimes(date)
	if err != nil {
		return SunEventTimes{}, err
	}

	sc.lock.Lock()
	sc.cache[dateKey] = cacheEntry{times: times, date: date}
	sc.lock.Unlock()

	return times, nil
}

func (sc *SunCalc) calculateSunEventTimes(date time.Time) (SunEventTimes, error) {
	civilDawn, err := astral.Dawn(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dawn: %w", err)
	}

	sunrise, err := astral.Sunrise(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	sunset, err := astral.Sunset(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	civilDusk, err := astral.Dusk(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dusk: %w", err)
	}

	return SunEventTimes{
		CivilDawn: civilDawn.UTC(),
		Sunrise:   sunrise.UTC(),
		Sunset:    sunset.UTC(),
		CivilDusk: civilDusk.UTC(),
	}, nil
}

// GetSunriseTime returns the sunrise time for a date.
func (sc *SunCalc) GetSunriseTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunrise, nil
}

// GetSunsetTime returns the sunset time for a date.
func (sc *SunCalc) GetSunsetTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunset, nil
}
