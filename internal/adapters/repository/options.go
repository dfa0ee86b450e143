package repository

import "math/rand"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSeed fixes the node priority source, making tree shapes reproducible.
func WithSeed(seed int64) Option {
	return func(s *TreapStore) {
		if seed != 0 {
			s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // tree balancing only
		}
	}
}
