// Package registry provides a small generic thread-safe registry.
//
// It backs two lookup tables in this codebase: the agent's tool dispatch
// (tool name to handler) and the per-thread mutexes that serialize
// start/resume cycles on one thread id.
//
// Register and look up values:
//
//	tools := registry.New[string, ToolFunc]()
//	tools.Register("web_search", searchFunc)
//
//	fn, ok := tools.Get("web_search")
//
// GetOrCreate supports lazy, race-free initialization; the factory is
// invoked at most once per key:
//
//	locks := registry.New[string, *sync.Mutex]()
//	mu := locks.GetOrCreate(threadID, func() *sync.Mutex { return new(sync.Mutex) })
//	mu.Lock()
//
// All methods are safe for concurrent use.
package registry
