package timeutil

import (
	"fmt"
	"time"
)

// Zone selects the time zone used to interpret user-supplied times.
// At most one of Name and OffsetMinutes may be set; the zero value
// means the local system zone.
type Zone struct {
	// Name is an IANA zone name, e.g. "Europe/Amsterdam".
	Name string
	// OffsetMinutes is a fixed UTC offset in minutes, e.g. +120 for UTC+2.
	OffsetMinutes *int
}

// Location resolves the selection to a *time.Location.
func (z Zone) Location() (*time.Location, error) {
	if z.Name != "" && z.OffsetMinutes != nil {
		return nil, fmt.Errorf("%w: zone name and fixed offset are mutually exclusive", ErrInvalidTimeExpression)
	}
	if z.Name != "" {
		loc, err := time.LoadLocation(z.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown time zone %q", ErrInvalidTimeExpression, z.Name)
		}
		return loc, nil
	}
	if z.OffsetMinutes != nil {
		m := *z.OffsetMinutes
		name := fmt.Sprintf("UTC%+03d:%02d", m/60, abs(m%60))
		return time.FixedZone(name, m*60), nil
	}
	return time.Local, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
