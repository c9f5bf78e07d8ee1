// Package fetcher retrieves the upstream workbook export (XLSX or CSV,
// local path or HTTP URL) and parses it into raw string rows for the
// loader.
package fetcher

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Source names one workbook export.
type Source struct {
	Path     string // local file path or http(s) URL
	Format   string // "xlsx" or "csv"; "" infers from the path extension
	Sheet    string // XLSX sheet name; "" means the first sheet
	SkipRows int    // leading rows before the header (title banners etc.)
}

// Rows fetches and parses the source. The first returned row is the header
// row; SkipRows leading rows are dropped before it. HTTP sources are
// downloaded to a temporary file first.
func Rows(ctx context.Context, src Source, hf *HTTPFetcher) ([][]string, error) {
	local := src.Path
	if isURL(src.Path) {
		tmp, err := os.CreateTemp("", "atlas-workbook-*"+urlExt(src.Path))
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create temp file")
		}
		_ = tmp.Close()
		defer os.Remove(tmp.Name()) //nolint:errcheck

		if _, err := hf.DownloadToFile(ctx, src.Path, tmp.Name()); err != nil {
			return nil, err
		}
		local = tmp.Name()
	}

	// An explicit format wins; extension-less export endpoints (a sheet's
	// "export?format=csv" URL) cannot be sniffed from the path.
	format := strings.ToLower(src.Format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(local)), ".")
	}

	switch format {
	case "xlsx":
		return ReadXLSX(local, XLSXOptions{SheetName: src.Sheet, SkipRows: src.SkipRows})
	case "csv":
		f, err := os.Open(local)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: open csv")
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(f, CSVOptions{SkipRows: src.SkipRows, TrimSpace: true})
	default:
		return nil, eris.Errorf("fetcher: unsupported workbook format %q", format)
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// urlExt extracts the file extension from a URL path, ignoring any query.
func urlExt(rawURL string) string {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return path.Ext(trimmed)
}
