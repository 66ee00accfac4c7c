package photo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is one GPS axis as stored in EXIF: degrees, minutes and seconds
// plus the hemisphere reference (N, S, E or W).
type Coordinate struct {
	Degrees float64
	Minutes float64
	Seconds float64
	Ref     string
}

// Decimal returns the signed decimal-degree value. Southern and western
// references are negative.
func (c Coordinate) Decimal() float64 {
	d := math.Abs(c.Degrees) + c.Minutes/60 + c.Seconds/3600
	if c.negative() {
		return -d
	}
	return d
}

// String renders the coordinate as `D° M' S"`, recomputed from the decimal
// value so that fractional degrees or minutes are carried down. A southern
// or western position gets a leading minus sign.
func (c Coordinate) String() string {
	dec := c.Decimal()
	abs := math.Abs(dec)

	deg := math.Floor(abs)
	fracMin := (abs - deg) * 60
	mins := math.Floor(fracMin)
	sec := math.Round((fracMin-mins)*60*100) / 100
	if sec >= 60 {
		sec -= 60
		mins++
	}
	if mins >= 60 {
		mins -= 60
		deg++
	}

	sign := ""
	if dec < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s° %s' %s\"", sign, formatNumber(deg), formatNumber(mins), formatNumber(sec))
}

func (c Coordinate) negative() bool {
	ref := strings.ToUpper(strings.TrimSpace(c.Ref))
	return ref == "S" || ref == "W"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
