package pipeline

import (
	"context"

	"github.com/couchcryptid/snj-koetutka/internal/domain"
)

// EventTransformer implements Transformer with a domain.Resolver and
// domain.Normalize.
type EventTransformer struct {
	resolver *domain.Resolver
}

// NewTransformer creates an EventTransformer.
func NewTransformer(resolver *domain.Resolver) *EventTransformer {
	return &EventTransformer{resolver: resolver}
}

func (t *EventTransformer) Transform(ctx context.Context, raw domain.RawEvent, cache *domain.CoordinateCache) (domain.NormalizedEvent, domain.Resolution) {
	res := t.resolver.Resolve(ctx, string(raw.Location), cache)
	return domain.Normalize(raw, res.CoordinatesOrNil()), res
}
