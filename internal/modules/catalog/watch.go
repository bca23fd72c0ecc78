package catalog

import (
	"context"
)

// Watch delivers the current result set for f, then re-reads and delivers
// again on every catalog change until ctx is canceled. Events carry no
// result data themselves; the authoritative state is always a fresh read.
func (s *service) Watch(ctx context.Context, f Filter, fn func([]*Product)) error {
	ch, err := s.bus.Subscribe(ctx, TopicChanged)
	if err != nil {
		return err
	}

	deliver := func() {
		products, err := s.repo.List(ctx, f)
		if err != nil {
			s.logger.Warn().Err(err).Msg("watch re-read failed")
			return
		}
		fn(products)
	}

	deliver()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			deliver()
		}
	}
}
