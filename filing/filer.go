// Package filing implements Filer, a scoped filesystem root for KERI
// installation resources (databases, configuration), resolving a relative
// (name, base) pair to an absolute path under a primary head directory
// with fallback to a per-user alternate head on failure. See spec.md §4.9.
package filing

import (
	"os"
	"path/filepath"
)

const (
	DefaultHeadDirPath        = "/usr/local/var"
	DefaultTailDirPath        = "keri"
	DefaultCleanTailDirPath   = "keri/clean"
	DefaultAltTailDirPath     = ".keri"
	DefaultAltCleanTailDirPath = ".keri/clean"
	DefaultPerm               = os.ModeSticky | 0o700 // sticky + owner rwx
	DefaultFext                = "text"
)

// Options configures a Filer at construction. Implementations follow the
// pack's generic-option convention (type-assert to the target record).
type Options struct {
	Base        string
	Temp        bool
	HeadDirPath string
	Perm        os.FileMode
	Reopen      bool
	Clear       bool
	Reuse       bool
	Clean       bool
	Filed       bool
	Extensioned bool
	Fext        string
}

// Option mutates an Options record; implementations ignore options that
// don't type-assert to the record they expect.
type Option func(any)

func WithBase(base string) Option        { return func(o any) { applyOptions(o, func(t *Options) { t.Base = base }) } }
func WithTemp(temp bool) Option          { return func(o any) { applyOptions(o, func(t *Options) { t.Temp = temp }) } }
func WithHeadDirPath(p string) Option    { return func(o any) { applyOptions(o, func(t *Options) { t.HeadDirPath = p }) } }
func WithPerm(perm os.FileMode) Option   { return func(o any) { applyOptions(o, func(t *Options) { t.Perm = perm }) } }
func WithClear(clear bool) Option        { return func(o any) { applyOptions(o, func(t *Options) { t.Clear = clear }) } }
func WithReuse(reuse bool) Option        { return func(o any) { applyOptions(o, func(t *Options) { t.Reuse = reuse }) } }
func WithClean(clean bool) Option        { return func(o any) { applyOptions(o, func(t *Options) { t.Clean = clean }) } }
func WithFiled(filed bool) Option        { return func(o any) { applyOptions(o, func(t *Options) { t.Filed = filed }) } }
func WithExtensioned(ext bool) Option    { return func(o any) { applyOptions(o, func(t *Options) { t.Extensioned = ext }) } }
func WithFext(fext string) Option        { return func(o any) { applyOptions(o, func(t *Options) { t.Fext = fext }) } }
func WithReopen(reopen bool) Option      { return func(o any) { applyOptions(o, func(t *Options) { t.Reopen = reopen }) } }

func applyOptions(o any, f func(*Options)) {
	if t, ok := o.(*Options); ok {
		f(t)
	}
}

// Filer manages a directory or file resource under a scoped root, with
// primary/alternate head fallback and temp/persistent lifetimes.
type Filer struct {
	name string
	base string
	temp bool

	headDirPath    string
	altHeadDirPath string
	perm           os.FileMode
	filed          bool
	extensioned    bool
	fext           string

	path      string
	file      *os.File
	opened    bool
	isTempDir bool
}

// New builds and opens a Filer for name, applying opts over defaults.
func New(name string, opts ...Option) (*Filer, error) {
	if filepath.IsAbs(name) {
		return nil, ErrNotRelative
	}

	o := &Options{
		HeadDirPath: DefaultHeadDirPath,
		Perm:        DefaultPerm,
		Fext:        DefaultFext,
		Reopen:      true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Base != "" && filepath.IsAbs(o.Base) {
		return nil, ErrNotRelative
	}

	f := &Filer{
		name:           name,
		base:           o.Base,
		temp:           o.Temp,
		headDirPath:    o.HeadDirPath,
		altHeadDirPath: altHeadDirPath(),
		perm:           o.Perm,
		filed:          o.Filed,
		extensioned:    o.Extensioned,
		fext:           o.Fext,
	}

	if o.Reopen {
		if _, err := f.Reopen(o.Clear, o.Reuse, o.Clean); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func altHeadDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "~"
	}
	return home
}

func (f *Filer) tailDirPath(clean bool) string {
	if clean {
		return DefaultCleanTailDirPath
	}
	return DefaultTailDirPath
}

func (f *Filer) altTailDirPath(clean bool) string {
	if clean {
		return DefaultAltCleanTailDirPath
	}
	return DefaultAltTailDirPath
}

// Path is the resolved absolute filesystem path this Filer manages.
func (f *Filer) Path() string { return f.path }

// File is the open *os.File when Filed is set, else nil.
func (f *Filer) File() *os.File { return f.file }

// Opened reports whether the resource is currently open.
func (f *Filer) Opened() bool { return f.opened }

func (f *Filer) finalName() string {
	if !f.filed && !f.extensioned {
		return f.name
	}
	if filepath.Ext(f.name) != "" {
		return f.name
	}
	return f.name + "." + f.fext
}

// Reopen closes any currently open resource, then creates or opens the
// path again, falling back to the alternate (home-directory) head when
// the primary head cannot be created or written, per spec.md §4.9.
func (f *Filer) Reopen(clear, reuse, clean bool) (bool, error) {
	if err := f.Close(clear); err != nil {
		return false, err
	}

	remake := f.path == "" || !reuse
	if !remake {
		if _, err := os.Stat(f.path); err != nil {
			remake = true
		}
	}

	if remake {
		path, file, isTemp, err := f.remake(clean)
		if err != nil {
			return false, err
		}
		f.path = path
		f.file = file
		f.isTempDir = isTemp
	} else if f.filed {
		file, err := openFiled(f.path, f.perm)
		if err != nil {
			return false, err
		}
		f.file = file
	}

	f.opened = !f.filed || f.file != nil
	return f.opened, nil
}

func (f *Filer) remake(clean bool) (string, *os.File, bool, error) {
	finalName := f.finalName()

	if f.temp {
		tmpRoot, err := os.MkdirTemp("", "keri_")
		if err != nil {
			return "", nil, false, err
		}
		path := filepath.Join(tmpRoot, f.tailDirPath(clean), f.base, finalName)
		if err := ensurePath(path, f.filed, f.extensioned, f.perm); err != nil {
			return "", nil, false, err
		}
		var file *os.File
		if f.filed {
			file, err = openFiled(path, f.perm)
			if err != nil {
				return "", nil, false, err
			}
		}
		return path, file, true, nil
	}

	primary := filepath.Join(f.headDirPath, f.tailDirPath(clean), f.base, finalName)
	if path, file, ok := f.tryCreate(primary); ok {
		return path, file, false, nil
	}

	alt := filepath.Join(f.altHeadDirPath, f.altTailDirPath(clean), f.base, finalName)
	if err := ensurePath(alt, f.filed, f.extensioned, f.perm); err != nil {
		return "", nil, false, err
	}
	var file *os.File
	if f.filed {
		var err error
		file, err = openFiled(alt, f.perm)
		if err != nil {
			return "", nil, false, err
		}
	}
	return alt, file, false, nil
}

// tryCreate attempts to create/open path and reports success so the
// caller can fall back to the alternate head on failure, per spec.md
// §4.9's primary-then-alt resolution.
func (f *Filer) tryCreate(path string) (string, *os.File, bool) {
	if err := ensurePath(path, f.filed, f.extensioned, f.perm); err != nil {
		return "", nil, false
	}
	if !f.filed {
		return path, nil, true
	}
	file, err := openFiled(path, f.perm)
	if err != nil {
		return "", nil, false
	}
	return path, file, true
}

// ensurePath creates the directory structure needed for path: the parent
// directory when path is a file (filed or extensioned), else path itself.
func ensurePath(path string, filed, extensioned bool, perm os.FileMode) error {
	if filed || extensioned {
		return os.MkdirAll(filepath.Dir(path), perm)
	}
	return os.MkdirAll(path, perm)
}

func openFiled(path string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, perm)
}

// Close releases the open file handle, if any, and optionally removes the
// managed path (clear). Temp-backed Filers fsync before removal so any
// buffered writes land before the directory disappears.
func (f *Filer) Close(clear bool) error {
	if f.file != nil {
		if f.temp {
			_ = f.file.Sync()
		}
		if err := f.file.Close(); err != nil {
			return err
		}
		f.file = nil
	}
	f.opened = false

	if clear && f.path != "" {
		if err := f.clearPath(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filer) clearPath() error {
	info, err := os.Stat(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if info.IsDir() {
		return os.RemoveAll(f.path)
	}
	if err := os.Remove(f.path); err != nil {
		return err
	}
	if f.temp {
		return os.RemoveAll(filepath.Dir(f.path))
	}
	return nil
}
