package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/docx"
)

// Filler writes records into copies of a report template. A Filler holds no
// per-call state and may be shared.
type Filler struct {
	fs  afero.Fs
	now func() time.Time
	loc *time.Location
	log logger.Logger
}

type Option func(*Filler)

// WithFs sets the filesystem templates are read from and reports written to.
func WithFs(fs afero.Fs) Option {
	return func(f *Filler) { f.fs = fs }
}

// WithClock sets the time source of the default report date.
func WithClock(now func() time.Time) Option {
	return func(f *Filler) { f.now = now }
}

// WithLocation sets the zone the default report date is taken in.
func WithLocation(loc *time.Location) Option {
	return func(f *Filler) { f.loc = loc }
}

func WithLogger(l logger.Logger) Option {
	return func(f *Filler) { f.log = l }
}

func NewFiller(opts ...Option) *Filler {
	f := &Filler{
		fs:  afero.NewOsFs(),
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.NewZapAdapter(logger.NewWithWriter("info", "console", os.Stderr))
	}
	return f
}

// Fill copies the template at templatePath, writes rec into the mapped cells
// and saves the result to outputPath. Any failure is returned as a
// REPORT_GENERATION_FAILED error and leaves no file at outputPath.
func (f *Filler) Fill(templatePath string, rec Record, outputPath string) error {
	if err := f.fill(templatePath, rec, outputPath); err != nil {
		f.log.Error("Error filling template", map[string]interface{}{
			"template": templatePath,
			"output":   outputPath,
			"error":    err,
		})
		return errors.NewProcessingError(err)
	}
	return nil
}

func (f *Filler) fill(templatePath string, rec Record, outputPath string) error {
	data, err := afero.ReadFile(f.fs, templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	doc, err := docx.Open(data)
	if err != nil {
		return fmt.Errorf("open template %s: %w", templatePath, err)
	}

	now := f.now().In(f.loc)
	for _, p := range Fields {
		cell, err := doc.Cell(p.Table, p.Row, p.Col)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Field, err)
		}
		if err := cell.SetText(rec.Value(p.Field, now)); err != nil {
			return fmt.Errorf("%s: %w", p.Field, err)
		}
	}

	return f.save(doc, outputPath)
}

// save writes doc beside outputPath and renames it into place.
func (f *Filler) save(doc *docx.Document, outputPath string) (err error) {
	dir, base := filepath.Split(outputPath)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(f.fs, dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = f.fs.Remove(tmpName)
		}
	}()

	if _, err = doc.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = f.fs.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = f.fs.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Succeeded reports the boolean outcome of a Fill call.
func Succeeded(err error) bool {
	return err == nil
}
