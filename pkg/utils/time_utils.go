package utils

import (
	"math"
	"time"
)

// IsWithinLastMinute checks if the given timestamp is within the last minute
func IsWithinLastMinute(timestamp time.Time) bool {
	return !IsStaleAt(timestamp, time.Now(), time.Minute)
}

// IsTimestampStale checks if a timestamp is older than the specified duration
func IsTimestampStale(timestamp time.Time, staleDuration time.Duration) bool {
	return IsStaleAt(timestamp, time.Now(), staleDuration)
}

// IsStaleAt checks if timestamp is older than staleDuration when observed at now
func IsStaleAt(timestamp, now time.Time, staleDuration time.Duration) bool {
	return now.Sub(timestamp) > staleDuration
}

// RoundSeconds returns d in seconds rounded to one decimal place
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*10) / 10
}
