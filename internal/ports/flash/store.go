package flash

import (
	"context"

	"webcourse/internal/core/flash"
)

// Store keeps pending messages per browser session until the next page pops them.
type Store interface {
	Add(ctx context.Context, session string, msg flash.Message) error
	Pop(ctx context.Context, session string) ([]flash.Message, error)
}
