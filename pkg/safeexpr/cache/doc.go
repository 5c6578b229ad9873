// Package cache provides a bounded, thread-safe cache for compiled programs.
//
// Entries are keyed by expression text and evicted oldest-first once the
// capacity is reached:
//
//	programs := cache.New[string, *safeexpr.Program](256)
//	prog, hit, err := programs.GetOrCreate(text, func() (*safeexpr.Program, error) {
//	    return engine.Compile(text)
//	})
//
// GetOrCreate holds the write lock while the factory runs, so each key is
// compiled at most once even when many goroutines ask for it together.
package cache
