package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyURL        = "url"
	KeyKind       = "kind"
	KeyTitle      = "title"
	KeyPages      = "pages"
	KeyCount      = "count"
	KeyFormat     = "format"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr         { return slog.String(KeyOutput, p) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Kind(k string) slog.Attr           { return slog.String(KeyKind, k) }
func Title(t string) slog.Attr          { return slog.String(KeyTitle, t) }
func Pages(n int) slog.Attr             { return slog.Int(KeyPages, n) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Format(f string) slog.Attr         { return slog.String(KeyFormat, f) }
func Addr(a string) slog.Attr           { return slog.String(KeyAddr, a) }
func Elapsed(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
