package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyGraph      = "graph"
	KeyStage      = "stage"
	KeyTask       = "task"
	KeyMode       = "mode"
	KeyCategory   = "category"
	KeyGroup      = "group"
	KeyPath       = "path"
	KeyFiles      = "files"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr { return slog.String(KeyBuildID, id) }
func Graph(name string) slog.Attr { return slog.String(KeyGraph, name) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Task(name string) slog.Attr  { return slog.String(KeyTask, name) }
func Mode(m string) slog.Attr     { return slog.String(KeyMode, m) }
func Category(c string) slog.Attr { return slog.String(KeyCategory, c) }
func Group(g string) slog.Attr    { return slog.String(KeyGroup, g) }
func Path(p string) slog.Attr     { return slog.String(KeyPath, p) }
func Files(n int) slog.Attr       { return slog.Int(KeyFiles, n) }
func Addr(a string) slog.Attr     { return slog.String(KeyAddr, a) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
