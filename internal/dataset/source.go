package dataset

import (
	"context"
	"log/slog"

	"covidboard/internal/core"
)

// Source loads the patient table once at startup.
type Source interface {
	Load(ctx context.Context) (*core.Table, error)
}

// FileSource reads a local CSV file.
type FileSource struct {
	Path string
}

var _ Source = FileSource{}

func (s FileSource) Load(ctx context.Context) (*core.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := LoadFile(s.Path)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Dataset loaded from CSV", "path", s.Path, "rows", t.Len())
	return t, nil
}
