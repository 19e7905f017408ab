package bridge

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"golang.org/x/sync/errgroup"
)

// deliverInputs reads every input concurrently and sends each one to its
// port. There is no ordering between inputs. A read failure is reported and
// skipped; a send failure ends the run.
func (b *Bridge) deliverInputs(ctx context.Context, report *entities.Report) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, in := range b.cfg.inputs {
		g.Go(func() error {
			return b.deliver(gctx, in, report)
		})
	}
	return g.Wait()
}

// deliver reads one input and sends it.
func (b *Bridge) deliver(ctx context.Context, in entities.InputBinding, report *entities.Report) error {
	payload, err := b.source.Read(ctx, in.Path)
	if err != nil {
		var missing *errors.MissingInputError
		if !stdErrors.As(err, &missing) {
			missing = &errors.MissingInputError{Err: err}
		}
		missing = &errors.MissingInputError{Err: missing.Err, Port: in.Port, Path: in.Path}

		b.cfg.logger.WarnContext(ctx, "input unavailable, port will not receive a message",
			"port", in.Port, "path", in.Path, "error", missing.Err)
		report.RecordMissing(entities.MissingInput{
			Port:  in.Port,
			Path:  in.Path,
			Error: missing.ToErrorDetail(),
		})
		return nil
	}

	if err := b.unit.Send(ctx, in.Port, payload); err != nil {
		return fmt.Errorf("failed to deliver %s: %w", in.Path, err)
	}
	report.RecordDelivered(in.Port)
	b.cfg.logger.DebugContext(ctx, "input delivered",
		"port", in.Port, "path", in.Path, "bytes", len(payload))
	return nil
}
