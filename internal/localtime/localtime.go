// Package localtime converts UTC instants into store-local weekday/time terms.
package localtime

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultTimezone is used when a store has no timezone configured or the
// configured name cannot be loaded.
const DefaultTimezone = "Asia/Kolkata"

var (
	locMu    sync.RWMutex
	locCache = make(map[string]*time.Location)
)

// Location resolves an IANA timezone name, caching loaded zones. It never
// fails: unknown names fall back to DefaultTimezone, then UTC.
func Location(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}

	locMu.RLock()
	loc, ok := locCache[name]
	locMu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return time.UTC
		}
		loc = Location(DefaultTimezone)
	}

	locMu.Lock()
	locCache[name] = loc
	locMu.Unlock()
	return loc
}

// Resolve converts an instant into (weekday, minutes since midnight) in the
// named timezone. 0=Sunday..6=Saturday, matching time.Weekday.
func Resolve(t time.Time, timezone string) (time.Weekday, int) {
	local := t.In(Location(timezone))
	return local.Weekday(), local.Hour()*60 + local.Minute()
}

// MinutesOf parses an "HH:MM" string into minutes since midnight.
func MinutesOf(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time format: %s", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %s", hhmm)
	}
	return hour*60 + minute, nil
}
