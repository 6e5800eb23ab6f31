package classifier

import (
	"context"
	"errors"

	"github.com/howzat/howzat/engine/query"
)

// ErrClassification marks NLU provider failures. The pipeline recovers from
// it with a default classification instead of aborting.
var ErrClassification = errors.New("classifier: extraction unavailable")

// NLU is the boundary contract to the natural-language understanding
// provider.
type NLU interface {
	Extract(ctx context.Context, text string, sessionCtx map[string]string) (*query.ClassificationResult, error)
}
