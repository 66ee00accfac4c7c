package photo

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DateTimeLayout is the EXIF date-time format.
const DateTimeLayout = "2006:01:02 15:04:05"

// Timestamp parses an EXIF date-time in loc and returns epoch milliseconds.
//
// Empty or malformed input, including surrounding whitespace, is logged and
// yields 0. A capture at exactly 1970-01-01 00:00:00 UTC also yields 0 and
// cannot be told apart from a failure.
func Timestamp(dateTime string, loc *time.Location, log logrus.FieldLogger) int64 {
	if strings.TrimSpace(dateTime) == "" {
		log.Error("cannot convert empty date-time to timestamp")
		return 0
	}
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(DateTimeLayout, dateTime, loc)
	if err != nil {
		log.WithField("date_time", dateTime).WithError(err).Error("cannot convert date-time to timestamp")
		return 0
	}
	return t.UnixMilli()
}
