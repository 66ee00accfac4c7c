package photo

import (
	"fmt"
	"math"
)

const (
	UnknownTime      = "unknown time"
	UnknownLatitude  = "unknown latitude"
	UnknownLongitude = "unknown longitude"
)

// Record is the metadata extracted from one image file.
type Record struct {
	FilePath string
	FileName string

	// DateTime is the EXIF DateTimeOriginal text, or UnknownTime.
	DateTime string
	// Timestamp is DateTime in epoch milliseconds, 0 when it could not be parsed.
	Timestamp int64

	Latitude  string
	Longitude string

	// FormattedLatitude and FormattedLongitude are signed decimal degrees, NaN when absent.
	FormattedLatitude  float64
	FormattedLongitude float64
}

// HasPosition reports whether both decimal coordinates are known.
func (r Record) HasPosition() bool {
	return !math.IsNaN(r.FormattedLatitude) && !math.IsNaN(r.FormattedLongitude)
}

func (r Record) String() string {
	return fmt.Sprintf("%s (time=%q ts=%d lat=%q lon=%q %v,%v)",
		r.FilePath, r.DateTime, r.Timestamp, r.Latitude, r.Longitude,
		r.FormattedLatitude, r.FormattedLongitude)
}
