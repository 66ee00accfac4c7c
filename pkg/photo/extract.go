package photo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotExist is returned when the file disappeared before it could be read.
	ErrNotExist = errors.New("file does not exist")
	// ErrPermission is returned when the file cannot be opened for reading.
	ErrPermission = errors.New("permission denied")
	// ErrUnsupportedFormat is returned when the content is not a supported image.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrCorrupt is returned when embedded metadata cannot be decoded.
	ErrCorrupt = errors.New("corrupt metadata")
)

// Metadata is the subset of embedded tags a Record is built from.
// Zero values mean the tag is absent.
type Metadata struct {
	DateTimeOriginal string
	Latitude         *Coordinate
	Longitude        *Coordinate
}

// MetadataReader reads embedded metadata from an image stream.
//
// A stream without metadata returns an empty Metadata and a nil error.
// Errors should wrap ErrUnsupportedFormat or ErrCorrupt.
type MetadataReader interface {
	ReadMetadata(r io.Reader) (Metadata, error)
}

// Result is the outcome of extracting one file: either Record is set or Err
// explains why the file was skipped.
type Result struct {
	Path   string
	Record *Record
	Err    error
}

// OK reports whether a record was produced.
func (r Result) OK() bool {
	return r.Err == nil && r.Record != nil
}

// Options configures Extract.
type Options struct {
	// Location is used to interpret EXIF date-times, which carry no zone.
	// If nil, time.Local is used.
	Location *time.Location

	// Metadata reads the embedded tags. If nil, ExifReader is used.
	Metadata MetadataReader

	// Dir is joined with the fs path to form Record.FilePath.
	Dir string
}

// Extract reads the metadata of the image at p inside fsys.
//
// It never returns an error directly: every failure is logged with the path
// and reported through Result.Err.
func Extract(fsys fs.FS, p string, opts Options, log logrus.FieldLogger) Result {
	log = log.WithField("path", p)

	fail := func(err error) Result {
		log.WithError(err).Error("cannot extract photo metadata, skipping")
		return Result{Path: p, Err: err}
	}

	info, err := fs.Stat(fsys, p)
	if err != nil {
		return fail(classifyOpenError(err))
	}
	if info.IsDir() {
		return fail(fmt.Errorf("%s is a directory: %w", p, fs.ErrInvalid))
	}

	f, err := fsys.Open(p)
	if err != nil {
		return fail(classifyOpenError(err))
	}
	defer f.Close()

	reader := opts.Metadata
	if reader == nil {
		reader = ExifReader{}
	}
	md, err := reader.ReadMetadata(f)
	if err != nil {
		return fail(fmt.Errorf("read metadata: %w", err))
	}
	log.WithFields(logrus.Fields{
		"date_time":     md.DateTimeOriginal,
		"has_latitude":  md.Latitude != nil,
		"has_longitude": md.Longitude != nil,
	}).Debug("metadata read")

	rec := newRecord(filePath(opts.Dir, p), path.Base(p), md, opts.Location, log)
	log.WithField("has_position", rec.HasPosition()).Infof("photo info: %s", rec)
	return Result{Path: p, Record: &rec}
}

func newRecord(filePath, fileName string, md Metadata, loc *time.Location, log logrus.FieldLogger) Record {
	rec := Record{
		FilePath:           filePath,
		FileName:           fileName,
		DateTime:           UnknownTime,
		Latitude:           UnknownLatitude,
		Longitude:          UnknownLongitude,
		FormattedLatitude:  math.NaN(),
		FormattedLongitude: math.NaN(),
	}

	if md.DateTimeOriginal != "" {
		rec.DateTime = md.DateTimeOriginal
		rec.Timestamp = Timestamp(md.DateTimeOriginal, loc, log)
	}
	if md.Latitude != nil {
		rec.Latitude = md.Latitude.String()
		rec.FormattedLatitude = md.Latitude.Decimal()
	}
	if md.Longitude != nil {
		rec.Longitude = md.Longitude.String()
		rec.FormattedLongitude = md.Longitude.Decimal()
	}
	return rec
}

func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotExist, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	default:
		return err
	}
}

func filePath(dir, p string) string {
	if dir == "" {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
