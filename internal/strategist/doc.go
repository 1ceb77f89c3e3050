// Package strategist answers campaign descriptions with generated marketing
// strategies.
//
// A Strategist retrieves the knowledge-base passages most relevant to a
// description, hands them to a generator and memoizes successful results in
// a bounded LRU cache keyed by the exact description. Failures are never
// cached. Concurrent requests for the same description share one
// computation.
//
//	s, err := strategist.New(kb, gen,
//	    strategist.WithCacheSize(32),
//	    strategist.WithGenerationTimeout(time.Minute),
//	)
//	strategy, err := s.CreateStrategy(ctx, "eco-friendly water bottle")
package strategist
