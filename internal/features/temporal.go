// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import "time"

// primeHours is the UTC hour allowlist for the prime-time flag. It
// covers the US-morning / EU-evening overlap and the US-evening block,
// where engagement on the tracked platforms peaks.
var primeHours = map[int]bool{
	12: true, 13: true, 14: true,
	18: true, 19: true, 20: true, 21: true, 22: true,
}

// temporalFeatures derives the clock features from ts. Callers pass
// the observation time (or time.Now() for live extraction); everything
// is computed in UTC so records replay identically across hosts.
func temporalFeatures(ts time.Time, out map[string]float64) {
	ts = ts.UTC()
	hour := ts.Hour()
	day := int(ts.Weekday())

	out[FeatHourOfDay] = float64(hour)
	out[FeatDayOfWeek] = float64(day)

	if day == int(time.Saturday) || day == int(time.Sunday) {
		out[FeatIsWeekend] = 1
	} else {
		out[FeatIsWeekend] = 0
	}
	if primeHours[hour] {
		out[FeatIsPrimeTime] = 1
	} else {
		out[FeatIsPrimeTime] = 0
	}
}
