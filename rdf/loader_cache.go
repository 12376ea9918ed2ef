package rdf

import (
	"container/list"
	"context"
	"sync"
)

// EvictionPolicy decides which cached document to drop when a
// CachingLoader is full. Implementations are called with the loader's
// lock held.
type EvictionPolicy interface {
	// Touch records a hit or insert of key.
	Touch(key string)
	// Remove forgets key.
	Remove(key string)
	// Victim returns the key to evict, or false when nothing can be evicted.
	Victim() (string, bool)
}

// LRUPolicy evicts the least recently used document.
type LRUPolicy struct {
	order *list.List // front is most recently used
	index map[string]*list.Element
}

// NewLRUPolicy returns an empty LRU policy.
func NewLRUPolicy() *LRUPolicy {
	return &LRUPolicy{order: list.New(), index: map[string]*list.Element{}}
}

func (p *LRUPolicy) Touch(key string) {
	if e, ok := p.index[key]; ok {
		p.order.MoveToFront(e)
		return
	}
	p.index[key] = p.order.PushFront(key)
}

func (p *LRUPolicy) Remove(key string) {
	if e, ok := p.index[key]; ok {
		p.order.Remove(e)
		delete(p.index, key)
	}
}

func (p *LRUPolicy) Victim() (string, bool) {
	e := p.order.Back()
	if e == nil {
		return "", false
	}
	return e.Value.(string), true
}

// CachingLoader memoizes remote documents fetched through another loader.
// Failed loads are not cached.
type CachingLoader struct {
	inner   DocumentLoader
	maxSize int
	policy  EvictionPolicy

	mu   sync.Mutex
	docs map[string]RemoteDocument
}

// NewCachingLoader caches up to maxSize documents from inner. A maxSize of
// zero or less means unbounded. A nil policy selects LRU.
func NewCachingLoader(inner DocumentLoader, maxSize int, policy EvictionPolicy) *CachingLoader {
	if policy == nil {
		policy = NewLRUPolicy()
	}
	return &CachingLoader{
		inner:   inner,
		maxSize: maxSize,
		policy:  policy,
		docs:    map[string]RemoteDocument{},
	}
}

// LoadDocument returns the cached document for iri, loading it on a miss.
func (c *CachingLoader) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	c.mu.Lock()
	if doc, ok := c.docs[iri]; ok {
		c.policy.Touch(iri)
		c.mu.Unlock()
		return doc, nil
	}
	c.mu.Unlock()

	doc, err := c.inner.LoadDocument(ctx, iri)
	if err != nil {
		return RemoteDocument{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[iri]; !ok {
		for c.maxSize > 0 && len(c.docs) >= c.maxSize {
			victim, ok := c.policy.Victim()
			if !ok {
				break
			}
			c.policy.Remove(victim)
			delete(c.docs, victim)
		}
	}
	c.docs[iri] = doc
	c.policy.Touch(iri)
	return doc, nil
}

// Len returns the number of cached documents.
func (c *CachingLoader) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Purge drops every cached document.
func (c *CachingLoader) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for iri := range c.docs {
		c.policy.Remove(iri)
	}
	c.docs = map[string]RemoteDocument{}
}
