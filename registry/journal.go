package registry

import (
	"context"
	"log/slog"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// journal collects compensating actions of a running operation.
type journal struct {
	steps []compensation
	log   *slog.Logger
}

func newJournal(log *slog.Logger) *journal {
	return &journal{log: log}
}

func (j *journal) push(name string, fn func(ctx context.Context) error) {
	j.steps = append(j.steps, compensation{name: name, fn: fn})
}

// rollback runs the compensations in reverse order. It keeps going after a failed step
// so that as much state as possible is restored.
func (j *journal) rollback(ctx context.Context, operation string, id interfaces.CertificateID) {
	// The operation's context may already be canceled.
	ctx = context.WithoutCancel(ctx)

	for i := len(j.steps) - 1; i >= 0; i-- {
		step := j.steps[i]
		if err := step.fn(ctx); err != nil {
			j.log.Error("Rollback step failed",
				slog.String("operation", operation),
				slog.String("step", step.name),
				slog.String("certificateID", id.String()),
				"err", err)
		}
	}
}
