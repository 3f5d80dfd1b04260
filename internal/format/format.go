// Package format holds the display helpers shared by the API layer and
// command messages: dates, dollar amounts and rates rendered the way the
// frontend shows them.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Date renders a simulation date like "Jan 2, 2024".
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// Currency renders a dollar amount with thousands separators, rounded to
// the nearest dollar.
func Currency(amount float64) string {
	return "$" + humanize.Commaf(math.Round(amount))
}

// Percent renders a fraction as a percentage with two decimals, so 0.0525
// becomes "5.25%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

// RelativeTime renders a wall-clock timestamp as "3 minutes ago".
func RelativeTime(t time.Time) string {
	return humanize.Time(t)
}
