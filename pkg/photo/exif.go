package photo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	dsexif "github.com/dsoprea/go-exif/v3"
	"github.com/rwcarlsen/goexif/exif"
)

// ExifReader is the default MetadataReader.
//
// The EXIF block is located with go-exif, which finds it in any container
// (JPEG APP1, PNG eXIf), and decoded with goexif.
type ExifReader struct{}

var supportedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func (ExifReader) ReadMetadata(r io.Reader) (Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("read image: %w", err)
	}

	if ct := http.DetectContentType(data); !supportedContentTypes[ct] {
		return Metadata{}, fmt.Errorf("%w: content looks like %s", ErrUnsupportedFormat, ct)
	}

	raw, err := dsexif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, dsexif.ErrNoExif) {
			return Metadata{}, nil
		}
		return Metadata{}, fmt.Errorf("%w: locate exif: %v", ErrCorrupt, err)
	}

	// Non-critical errors come from broken sub-IFDs (GPS, interop); x still
	// holds everything that could be read.
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil && exif.IsCriticalError(err) {
		return Metadata{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if x == nil {
		return Metadata{}, fmt.Errorf("%w: empty exif block", ErrCorrupt)
	}

	lat := coordinateTag(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	lon := coordinateTag(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	lat, lon = fromLatLong(x, lat, lon)

	return Metadata{
		DateTimeOriginal: stringTag(x, exif.DateTimeOriginal),
		Latitude:         lat,
		Longitude:        lon,
	}, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// coordinateTag reads a degrees/minutes/seconds triple and its hemisphere
// reference. Either one missing means the axis is unknown.
func coordinateTag(x *exif.Exif, value, ref exif.FieldName) *Coordinate {
	hemisphere := stringTag(x, ref)
	if hemisphere == "" {
		return nil
	}

	tag, err := x.Get(value)
	if err != nil || tag.Count < 3 {
		return nil
	}

	var dms [3]float64
	for i := range dms {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return nil
		}
		dms[i] = float64(num) / float64(den)
	}

	return &Coordinate{
		Degrees: dms[0],
		Minutes: dms[1],
		Seconds: dms[2],
		Ref:     hemisphere,
	}
}

// fromLatLong fills in axes that coordinateTag could not read, such as
// degrees stored as text, from goexif's LatLong. LatLong needs both axes, so
// a lone unreadable axis stays unknown.
func fromLatLong(x *exif.Exif, lat, lon *Coordinate) (*Coordinate, *Coordinate) {
	if lat != nil && lon != nil {
		return lat, lon
	}
	la, lo, err := x.LatLong()
	if err != nil {
		return lat, lon
	}
	if lat == nil {
		lat = decimalCoordinate(la, stringTag(x, exif.GPSLatitudeRef))
	}
	if lon == nil {
		lon = decimalCoordinate(lo, stringTag(x, exif.GPSLongitudeRef))
	}
	return lat, lon
}

func decimalCoordinate(v float64, ref string) *Coordinate {
	if ref == "" || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &Coordinate{Degrees: math.Abs(v), Ref: ref}
}
