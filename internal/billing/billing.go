// Package billing holds the arithmetic used to bill a closed session.
// All rounding is half away from zero.
package billing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHourlyRate applies when no active rate setting matches.
var DefaultHourlyRate = decimal.NewFromInt(500)

var minutesPerHour = decimal.NewFromInt(60)

// DurationMinutes returns the elapsed time between start and end rounded to the
// nearest whole minute. A negative interval, which only clock skew can produce,
// counts as zero.
func DurationMinutes(start, end time.Time) int {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Round(elapsed.Seconds() / 60))
}

// Cost is hourlyRate * minutes / 60 rounded to two decimal places.
func Cost(hourlyRate decimal.Decimal, minutes int) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero.Round(2)
	}
	return hourlyRate.Mul(decimal.NewFromInt(int64(minutes))).Div(minutesPerHour).Round(2)
}

// Average returns sum/count rounded to two decimals, or zero when count is zero.
func Average(sum decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.DivRound(decimal.NewFromInt(int64(count)), 2)
}
