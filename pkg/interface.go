package gnbarcode

import (
	"github.com/gnames/gnbarcode/internal/ent/linker"
	"github.com/gnames/gnbarcode/internal/ent/loader"
	"github.com/gnames/gnbarcode/internal/ent/reporter"
	"github.com/gnames/gnbarcode/internal/ent/uploader"
)

// GNbarcode is an interface for generating barcode-validation reports.
type GNbarcode interface {
	// Report runs the full pipeline and renders report artifacts.
	Report(loader.Loader, linker.Linker, reporter.Reporter) error

	// Upload runs the full pipeline and saves the classified results
	// to a database.
	Upload(loader.Loader, linker.Linker, uploader.Uploader) error
}
