package analyze

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/xuri/excelize/v2"

	"github.com/quidome/photoinfo-go/pkg/photo"
	"github.com/quidome/photoinfo-go/pkg/photo/phototest"
	"github.com/quidome/photoinfo-go/pkg/report"
	"github.com/quidome/photoinfo-go/pkg/scan"
)

var fixedNow = func() time.Time { return time.Date(2024, 2, 29, 12, 0, 0, 0, time.Local) }

func writeFile(t *testing.T, dir, relPath string, data []byte) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	newYear := phototest.Exif{DateTimeOriginal: "2022:01:01 00:00:00"}
	writeFile(t, src, "a.jpg", phototest.JPEG(&newYear))
	writeFile(t, src, "b.png", phototest.PNG(nil))
	writeFile(t, src, ".hidden/c.jpg", phototest.JPEG(&newYear))
	writeFile(t, src, "notes.txt", []byte("not a photo"))

	log, _ := test.NewNullLogger()
	runner := NewRunner(Options{OutputDir: out, Report: report.Options{Now: fixedNow}}, log)

	sum, err := runner.Run(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.State != StateDone {
		t.Fatalf("expected state %q, got %q", StateDone, sum.State)
	}
	if sum.ReportPath != filepath.Join(out, "photoinfo_20240229.xlsx") {
		t.Fatalf("unexpected report path %q", sum.ReportPath)
	}
	if len(sum.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sum.Records))
	}

	f, err := excelize.OpenFile(sum.ReportPath)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(report.SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 data rows, got %d rows: %#v", len(rows), rows)
	}

	jpegTS := time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local).UnixMilli()
	wantJPEG := []string{
		filepath.Join(sum.Dir, "a.jpg"), "a.jpg", "2022:01:01 00:00:00", strconv.FormatInt(jpegTS, 10),
		photo.UnknownLatitude, photo.UnknownLongitude, "NaN", "NaN",
	}
	if !reflect.DeepEqual(rows[1], wantJPEG) {
		t.Fatalf("unexpected jpeg row\n got: %#v\nwant: %#v", rows[1], wantJPEG)
	}

	wantPNG := []string{
		filepath.Join(sum.Dir, "b.png"), "b.png", photo.UnknownTime, "0",
		photo.UnknownLatitude, photo.UnknownLongitude, "NaN", "NaN",
	}
	if !reflect.DeepEqual(rows[2], wantPNG) {
		t.Fatalf("unexpected png row\n got: %#v\nwant: %#v", rows[2], wantPNG)
	}
}

func TestRun_SkipsUnreadablePhotos(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	writeFile(t, src, "broken.jpg", []byte("this is not a jpeg"))
	writeFile(t, src, "sub/ok.gif", phototest.GIF())

	log, hook := test.NewNullLogger()
	runner := NewRunner(Options{OutputDir: out}, log)

	sum, err := runner.Run(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Records) != 1 || sum.Records[0].FileName != "ok.gif" {
		t.Fatalf("expected only ok.gif, got %+v", sum.Records)
	}
	if !math.IsNaN(sum.Records[0].FormattedLatitude) {
		t.Fatalf("expected NaN latitude for gif")
	}
	if len(sum.Skipped) != 1 || !errors.Is(sum.Skipped[0].Err, photo.ErrUnsupportedFormat) {
		t.Fatalf("expected broken.jpg to be skipped as unsupported, got %+v", sum.Skipped)
	}
	if sum.Skipped[0].Path != "broken.jpg" {
		t.Fatalf("unexpected skipped path %q", sum.Skipped[0].Path)
	}

	var sawError bool
	for _, e := range hook.AllEntries() {
		if e.Data["path"] == "broken.jpg" && e.Message == "cannot extract photo metadata, skipping" {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected a log line for broken.jpg")
	}
}

func TestRun_EmptyDirectoryWritesHeaderOnly(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	log, _ := test.NewNullLogger()
	sum, err := NewRunner(Options{OutputDir: out}, log).Run(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(sum.ReportPath); err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	if len(sum.Records) != 0 {
		t.Fatalf("expected no records")
	}
}

func TestRun_MaxDepth(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	writeFile(t, src, "top.gif", phototest.GIF())
	writeFile(t, src, "sub/deep.gif", phototest.GIF())

	opts := scan.DefaultOptions()
	opts.MaxDepth = 0

	log, _ := test.NewNullLogger()
	sum, err := NewRunner(Options{OutputDir: out, Scan: &opts}, log).Run(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Records) != 1 || sum.Records[0].FileName != "top.gif" {
		t.Fatalf("expected only top.gif, got %+v", sum.Records)
	}
}

func TestRun_CustomExtensions(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	writeFile(t, src, "a.gif", phototest.GIF())
	writeFile(t, src, "b.JPG", phototest.JPEG(nil))

	opts := scan.DefaultOptions()
	opts.PhotoExtensions = []string{"jpg"}

	log, _ := test.NewNullLogger()
	sum, err := NewRunner(Options{OutputDir: out, Scan: &opts}, log).Run(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Records) != 1 || sum.Records[0].FileName != "b.JPG" {
		t.Fatalf("expected only b.JPG, got %+v", sum.Records)
	}
}

func TestRun_TargetMustBeDirectory(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.jpg", phototest.JPEG(nil))

	testCases := []struct {
		name string
		dir  string
	}{
		{name: "missing", dir: filepath.Join(src, "nope")},
		{name: "file", dir: filepath.Join(src, "a.jpg")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := t.TempDir()
			log, _ := test.NewNullLogger()

			sum, err := NewRunner(Options{OutputDir: out}, log).Run(tc.dir)
			if !errors.Is(err, ErrNotDirectory) {
				t.Fatalf("expected ErrNotDirectory, got %v", err)
			}
			if sum.State != StateFailed {
				t.Fatalf("expected failed state, got %q", sum.State)
			}
			entries, _ := os.ReadDir(out)
			if len(entries) != 0 {
				t.Fatalf("expected no report, found %d files", len(entries))
			}
		})
	}
}

func TestRun_UnreadableRootWritesNoReport(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, src, "a.gif", phototest.GIF())
	// Searchable but not listable: the root can be stat'ed, not read.
	if err := os.Chmod(src, 0o300); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(src, 0o755) })

	log, _ := test.NewNullLogger()
	sum, err := NewRunner(Options{OutputDir: out}, log).Run(src)
	if !errors.Is(err, ErrTraverse) {
		t.Fatalf("expected ErrTraverse, got %v", err)
	}
	if sum.State != StateFailed {
		t.Fatalf("expected failed state, got %q", sum.State)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("expected no report, found %d files", len(entries))
	}
}

func TestRun_ReportFailure(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.gif", phototest.GIF())

	log, _ := test.NewNullLogger()
	runner := NewRunner(Options{OutputDir: filepath.Join(src, "missing")}, log)

	sum, err := runner.Run(src)
	if !errors.Is(err, ErrReport) {
		t.Fatalf("expected ErrReport, got %v", err)
	}
	if sum.State != StateFailed {
		t.Fatalf("expected failed state, got %q", sum.State)
	}
	if len(sum.Records) != 1 {
		t.Fatalf("expected the record to be kept in the summary")
	}
}
