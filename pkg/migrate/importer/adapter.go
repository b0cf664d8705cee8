package importer

import (
	"context"
	"fmt"

	"github.com/baderkha/sql2doc/pkg/migrate/artifact"
	"github.com/rs/zerolog"
)

// Adapter : materialize -> load -> (archive) -> release for one table.
// the artifact is released on every path out of Import.
type Adapter struct {
	materializer *artifact.Materializer
	loader       Loader
	archiver     Archiver
	log          zerolog.Logger
}

func NewAdapter(m *artifact.Materializer, loader Loader, log zerolog.Logger) *Adapter {
	return &Adapter{materializer: m, loader: loader, log: log}
}

// WithArchiver : archive artifacts of successful imports, archive failures are only logged
func (a *Adapter) WithArchiver(ar Archiver) *Adapter {
	a.archiver = ar
	return a
}

func (a *Adapter) Import(ctx context.Context, req Request) error {
	h, err := a.materializer.Materialize(req.Table, req.Rows)
	if err != nil {
		return fmt.Errorf("%w : %w", ErrArtifact, err)
	}
	defer func() {
		if err := a.materializer.Release(h); err != nil {
			a.log.Warn().Err(err).Str("table", req.Table).Msg("could not release artifact")
		}
	}()

	a.log.Debug().Str("table", req.Table).Str("file", h.Path).Int("rows", h.Rows).Int64("bytes", h.Bytes).Str("target", req.Target()).Msg("importing artifact")
	if err := a.loader.Load(ctx, h, req); err != nil {
		return err
	}

	if a.archiver != nil {
		if err := a.archiver.Archive(ctx, h); err != nil {
			a.log.Warn().Err(err).Str("table", req.Table).Msg("could not archive artifact")
		}
	}
	return nil
}
