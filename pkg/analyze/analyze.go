// Package analyze runs one pass over a directory: walk it, extract every
// photo and write the report.
package analyze

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quidome/photoinfo-go/pkg/photo"
	"github.com/quidome/photoinfo-go/pkg/report"
	"github.com/quidome/photoinfo-go/pkg/scan"
)

// State is the phase a run is in.
type State string

const (
	StateIdle       State = "idle"
	StateTraversing State = "traversing"
	StateWriting    State = "writing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var (
	// ErrNotDirectory is returned when the target does not exist or is not a directory.
	ErrNotDirectory = errors.New("directory does not exist or is not a directory")
	// ErrTraverse wraps a failure that ended the walk; no report is written.
	ErrTraverse = errors.New("traverse directory")
	// ErrReport wraps a failure to write the report.
	ErrReport = errors.New("write report")
)

// Summary describes a finished run.
type Summary struct {
	Dir        string
	State      State
	Records    []photo.Record
	Skipped    []photo.Result
	ReportPath string
}

// Options configures a Runner. Zero values pick the defaults of each stage.
type Options struct {
	// OutputDir receives the report. Empty means the working directory.
	OutputDir string

	// Scan limits the walk. If nil, scan.DefaultOptions is used.
	Scan     *scan.Options
	Metadata photo.MetadataReader
	Location *time.Location
	Report   report.Options
}

// Runner performs runs. It holds no state between them.
type Runner struct {
	opts Options
	scan scan.Options
	log  logrus.FieldLogger
}

func NewRunner(opts Options, log logrus.FieldLogger) *Runner {
	scanOpts := scan.DefaultOptions()
	if opts.Scan != nil {
		scanOpts = *opts.Scan
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Runner{opts: opts, scan: scanOpts, log: log}
}

// Run walks dir, extracts every photo below it and writes one report.
//
// Per-file failures are collected in Summary.Skipped. The returned error is
// non-nil only when the run ends in StateFailed.
func (r *Runner) Run(dir string) (Summary, error) {
	sum := Summary{Dir: dir, State: StateIdle}
	log := r.log.WithField("dir", dir)

	fail := func(err error) (Summary, error) {
		sum.State = StateFailed
		log.WithError(err).Error("run failed")
		return sum, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrNotDirectory, err))
	}
	sum.Dir = abs

	fsys := os.DirFS(abs)
	if err := scan.CheckRoot(fsys, "."); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrNotDirectory, err))
	}

	sum.State = StateTraversing
	log.Info("scanning directory")

	extractOpts := photo.Options{
		Location: r.opts.Location,
		Metadata: r.opts.Metadata,
		Dir:      abs,
	}
	paths, err := scan.Scan(fsys, ".", r.scan, r.log)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrTraverse, err))
	}
	for _, p := range paths {
		res := photo.Extract(fsys, p, extractOpts, r.log)
		if !res.OK() {
			sum.Skipped = append(sum.Skipped, res)
			continue
		}
		sum.Records = append(sum.Records, *res.Record)
	}

	sum.State = StateWriting
	path, err := report.Write(r.opts.OutputDir, sum.Records, r.opts.Report)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrReport, err))
	}
	sum.ReportPath = path
	sum.State = StateDone

	log.WithFields(logrus.Fields{
		"photos":  len(sum.Records),
		"skipped": len(sum.Skipped),
		"report":  path,
	}).Info("report written")
	return sum, nil
}
