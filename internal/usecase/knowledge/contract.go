package knowledge

import (
	"context"

	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
)

// Lister reads pages from the vendor knowledge base.
type Lister interface {
	ListPage(ctx context.Context, mid int64, size int) (domknow.Page, error)
	Configured() bool
}
