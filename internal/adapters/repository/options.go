package repository

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithCapacity bounds the board to the best n keys; weaker entries are
// dropped as better ones arrive.
func WithCapacity(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.capacity = n
		}
	}
}
