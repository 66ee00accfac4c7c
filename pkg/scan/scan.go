package scan

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

// HiddenPrefix marks a directory whose whole subtree is skipped.
const HiddenPrefix = "."

type Options struct {
	MaxDepth int

	// PhotoExtensions replaces the default photo extensions. Nil means IsPhoto.
	PhotoExtensions []string
}

func DefaultOptions() Options {
	return Options{
		MaxDepth: -1,
	}
}

// DefaultExtensions lists the file extensions treated as photos.
func DefaultExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif"}
}

// VisitFunc is called for every regular file the walk reaches.
// Returning an error stops the walk and the error is returned by Walk.
type VisitFunc func(path string, d fs.DirEntry) error

var defaultPhotoExts = normalizeExts(DefaultExtensions())

// IsPhoto reports whether name has one of the default photo extensions.
// The check is case-insensitive and looks at the name only.
func IsPhoto(name string) bool {
	return defaultPhotoExts[strings.ToLower(path.Ext(name))]
}

// Matcher returns the photo filter for o: IsPhoto, or a lookup in
// o.PhotoExtensions when set.
func (o Options) Matcher() func(name string) bool {
	if o.PhotoExtensions == nil {
		return IsPhoto
	}
	exts := normalizeExts(o.PhotoExtensions)
	return func(name string) bool {
		return exts[strings.ToLower(path.Ext(name))]
	}
}

// Walk visits every regular file below root depth-first in lexical order.
//
// Directories other than root whose name starts with HiddenPrefix are pruned.
// Errors on individual entries are logged and the walk continues; only an
// error on root itself, or one returned by visit, ends the walk.
func Walk(fsys fs.FS, root string, opts Options, log logrus.FieldLogger, visit VisitFunc) error {
	if opts.MaxDepth < -1 {
		return fs.ErrInvalid
	}

	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.WithField("path", p).WithError(err).Error("cannot read entry, skipping")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p == root {
				return nil
			}
			if strings.HasPrefix(d.Name(), HiddenPrefix) {
				log.WithField("path", p).Info("skipping hidden directory")
				return fs.SkipDir
			}
			if opts.MaxDepth >= 0 && depth(root, p) > opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if opts.MaxDepth >= 0 && depth(root, p) > opts.MaxDepth {
			return nil
		}

		log.WithField("path", p).Info("visiting file")
		return visit(p, d)
	})
}

// Scan returns the photo files below root, as paths relative to root.
func Scan(fsys fs.FS, root string, opts Options, log logrus.FieldLogger) ([]string, error) {
	match := opts.Matcher()

	var matches []string
	err := Walk(fsys, root, opts, log, func(p string, d fs.DirEntry) error {
		if !match(d.Name()) {
			return nil
		}
		matches = append(matches, rel(root, p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// ErrNotDirectory is returned when a walk target is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// CheckRoot verifies that root exists in fsys and is a directory.
func CheckRoot(fsys fs.FS, root string) error {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if e := normalizeExt(ext); e != "" {
			m[e] = true
		}
	}
	return m
}

func normalizeExt(ext string) string {
	e := strings.TrimSpace(strings.ToLower(ext))
	if e == "" {
		return ""
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

func rel(root, p string) string {
	if root == "." {
		return p
	}
	return strings.TrimPrefix(p, root+"/")
}

// depth counts the directories between root and p; a direct child of root has depth 0.
func depth(root, p string) int {
	r := rel(root, p)
	if r == "." || r == "" {
		return 0
	}
	return strings.Count(r, "/")
}
