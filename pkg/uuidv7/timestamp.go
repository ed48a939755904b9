package uuidv7

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Timestamp is a UTC calendar instant with fractional seconds.
type Timestamp struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second float64
}

// NewTimestamp validates every calendar field and returns ErrInvalidTimestamp
// for values that cannot be represented.
func NewTimestamp(year int, month time.Month, day, hour, minute int, second float64) (Timestamp, error) {
	switch {
	case year < 0 || year > 9999:
		return Timestamp{}, fmt.Errorf("%w: year %d out of range", ErrInvalidTimestamp, year)
	case month < time.January || month > time.December:
		return Timestamp{}, fmt.Errorf("%w: month %d out of range", ErrInvalidTimestamp, month)
	case day < 1 || day > daysIn(year, month):
		return Timestamp{}, fmt.Errorf("%w: day %d out of range for %04d-%02d", ErrInvalidTimestamp, day, year, month)
	case hour < 0 || hour > 23:
		return Timestamp{}, fmt.Errorf("%w: hour %d out of range", ErrInvalidTimestamp, hour)
	case minute < 0 || minute > 59:
		return Timestamp{}, fmt.Errorf("%w: minute %d out of range", ErrInvalidTimestamp, minute)
	case math.IsNaN(second) || second < 0 || second >= 60:
		return Timestamp{}, fmt.Errorf("%w: second %v out of range", ErrInvalidTimestamp, second)
	}

	return Timestamp{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
	}, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Time converts the timestamp back to a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	whole, frac := math.Modf(ts.Second)
	return time.Date(ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, int(whole), int(math.Round(frac*1e9)), time.UTC)
}

func (ts Timestamp) String() string {
	return ts.Time().Format(time.RFC3339Nano)
}
