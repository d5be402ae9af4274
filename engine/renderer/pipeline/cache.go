package pipeline

import "sync"

// BuildFunc compiles the pipeline for a key that is not cached yet.
type BuildFunc func(key Key) (Pipeline, error)

// Cache holds compiled pipelines by Key.
type Cache interface {
	// Get returns the cached pipeline for key, building and caching it on a miss.
	// A failed build is not cached, so the next Get retries.
	//
	// Parameters:
	//   - key: the pipeline state
	//   - build: compiles the pipeline on a miss
	//
	// Returns:
	//   - Pipeline: the cached or newly built pipeline
	//   - error: the build error, if any
	Get(key Key, build BuildFunc) (Pipeline, error)

	// Len returns the number of cached pipelines.
	Len() int

	// Evict releases and forgets every pipeline that uses the given program.
	//
	// Parameters:
	//   - programID: the id of a program that is being destroyed
	//
	// Returns:
	//   - int: the number of pipelines evicted
	Evict(programID uint64) int

	// Release releases every cached pipeline and empties the cache.
	Release()
}

type cache struct {
	mu        *sync.Mutex
	pipelines map[Key]Pipeline
}

var _ Cache = &cache{}

// NewCache creates an empty pipeline cache.
func NewCache() Cache {
	return &cache{
		mu:        &sync.Mutex{},
		pipelines: make(map[Key]Pipeline),
	}
}

func (c *cache) Get(key Key, build BuildFunc) (Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	p, err := build(key)
	if err != nil {
		return nil, err
	}
	c.pipelines[key] = p
	return p, nil
}

func (c *cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}

func (c *cache) Evict(programID uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, p := range c.pipelines {
		if key.Uses(programID) {
			p.Release()
			delete(c.pipelines, key)
			n++
		}
	}
	return n
}

func (c *cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, key)
	}
}
