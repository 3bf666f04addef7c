// Package stage defines the contract between the workflow engine and the
// individual pipeline stages.
package stage

import (
	"context"

	"paperflow/internal/paper"
)

// Handler describes the contract the workflow engine needs from each stage.
// Execute mutates the run in place; anticipated failures come back as
// wrapped errors the engine absorbs into run state, while a nil error means
// the stage advanced the run's status.
type Handler interface {
	Name() string
	Execute(context.Context, *paper.Run) error
	HealthCheck(context.Context) Health
}
