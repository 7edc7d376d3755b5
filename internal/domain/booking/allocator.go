package booking

import (
	"math/rand/v2"
)

// DefaultMaxNumber is the upper bound of the queue-number range.
const DefaultMaxNumber = 100

// NumberAllocator assigns a queue number from [1, max] that is not in the
// used set. Implementations return ErrQueueExhausted when every number in
// the range is taken.
type NumberAllocator interface {
	Allocate(used map[int]bool) (int, error)
}

// NewAllocator returns the allocator selected by strategy name. Unknown
// strategies fall back to rejection sampling.
func NewAllocator(strategy string, max int) NumberAllocator {
	if strategy == "freelist" {
		return FreeListAllocator{Max: max}
	}
	return RejectionAllocator{Max: max}
}

// RejectionAllocator draws uniformly from [1, max] and redraws on collision
// with the used set. Matches the legacy assignment behavior; cheap while the
// day is mostly free, degenerate as it fills.
type RejectionAllocator struct {
	Max int
}

func (a RejectionAllocator) Allocate(used map[int]bool) (int, error) {
	max := a.Max
	if max <= 0 {
		max = DefaultMaxNumber
	}

	inRange := 0
	for n := range used {
		if n >= 1 && n <= max {
			inRange++
		}
	}
	if inRange >= max {
		return 0, ErrQueueExhausted
	}

	for {
		n := rand.IntN(max) + 1
		if !used[n] {
			return n, nil
		}
	}
}

// FreeListAllocator materializes the free numbers and picks one at random.
// Constant number of draws regardless of utilization.
type FreeListAllocator struct {
	Max int
}

func (a FreeListAllocator) Allocate(used map[int]bool) (int, error) {
	max := a.Max
	if max <= 0 {
		max = DefaultMaxNumber
	}

	free := make([]int, 0, max)
	for n := 1; n <= max; n++ {
		if !used[n] {
			free = append(free, n)
		}
	}
	if len(free) == 0 {
		return 0, ErrQueueExhausted
	}
	return free[rand.IntN(len(free))], nil
}
