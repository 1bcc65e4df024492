package probe

import (
	"context"

	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
)

// Prober performs the fixed diagnostic call against the knowledge API.
type Prober interface {
	Probe(ctx context.Context) domknow.ProbeReport
	Configured() bool
}
