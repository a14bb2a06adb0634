/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mirror

import (
	"context"
	"sync"

	"github.com/carverauto/gafo/pkg/logger"
)

const defaultQueueSize = 256

// Store owns the mirrored collections. Each collection has its own
// dispatcher goroutine, so a slow handler on one collection never delays
// another.
type Store struct {
	logger    logger.Logger
	queueSize int

	mu          sync.Mutex
	collections map[string]*collection
	ctx         context.Context
	started     bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type collection struct {
	name   string
	events chan Event

	mu      sync.RWMutex
	handler Handler
	docs    map[string]Document
}

// New creates an empty store.
func New(log logger.Logger) *Store {
	return &Store{
		logger:      log,
		queueSize:   defaultQueueSize,
		collections: make(map[string]*collection),
		done:        make(chan struct{}),
	}
}

// Observe sets the handler for a collection, replacing any earlier one.
func (s *Store) Observe(name string, h Handler) {
	c := s.collection(name)

	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Start launches the dispatchers. Collections first seen after Start get
// their dispatcher immediately.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.started = true
	s.ctx = ctx

	for _, c := range s.collections {
		s.startDispatcher(c)
	}
}

// Apply queues an event for its collection. It blocks while the collection's
// queue is full and returns without applying once the store is closed.
func (s *Store) Apply(ev Event) {
	c := s.collection(ev.Collection)

	select {
	case c.events <- ev:
	case <-s.done:
		s.logger.Debug().
			Str("collection", ev.Collection).
			Str("id", ev.ID).
			Msg("Store closed, dropping event")
	}
}

// Get returns a copy of a mirrored document.
func (s *Store) Get(name, id string) (Document, bool) {
	c := s.lookup(name)
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, false
	}

	return doc.clone(), true
}

// Len returns the number of documents currently mirrored for a collection.
func (s *Store) Len(name string) int {
	c := s.lookup(name)
	if c == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.docs)
}

// Close applies whatever is already queued, then stops the dispatchers.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.wg.Wait()
}

func (s *Store) lookup(name string) *collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.collections[name]
}

func (s *Store) collection(name string) *collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c
	}

	c := &collection{
		name:   name,
		events: make(chan Event, s.queueSize),
		docs:   make(map[string]Document),
	}
	s.collections[name] = c

	if s.started {
		s.startDispatcher(c)
	}

	return c
}

// startDispatcher must be called with s.mu held.
func (s *Store) startDispatcher(c *collection) {
	s.wg.Add(1)

	go s.dispatch(s.ctx, c)
}

func (s *Store) dispatch(ctx context.Context, c *collection) {
	defer s.wg.Done()

	for {
		select {
		case ev := <-c.events:
			s.apply(c, ev)
		case <-ctx.Done():
			return
		case <-s.done:
			for {
				select {
				case ev := <-c.events:
					s.apply(c, ev)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) apply(c *collection, ev Event) {
	c.mu.Lock()

	handler := c.handler

	switch ev.Kind {
	case Added:
		doc := ev.Fields.clone()
		c.docs[ev.ID] = doc
		c.mu.Unlock()

		if handler != nil {
			handler.OnAdded(ev.ID, doc.clone())
		}
	case Changed:
		doc, ok := c.docs[ev.ID]
		if !ok {
			s.logger.Debug().Str("collection", c.name).Str("id", ev.ID).Msg("Change for unknown document")

			doc = make(Document)
		}

		for k, v := range ev.Fields {
			doc[k] = v
		}

		for _, k := range ev.Cleared {
			delete(doc, k)
		}

		c.docs[ev.ID] = doc
		c.mu.Unlock()

		if handler != nil {
			handler.OnChanged(ev.ID, ev.Fields.clone(), ev.Cleared)
		}
	case Removed:
		last, ok := c.docs[ev.ID]
		if !ok {
			s.logger.Debug().Str("collection", c.name).Str("id", ev.ID).Msg("Removal of unknown document")

			last = make(Document)
		}

		delete(c.docs, ev.ID)
		c.mu.Unlock()

		if handler != nil {
			handler.OnRemoved(ev.ID, last)
		}
	default:
		c.mu.Unlock()

		s.logger.Warn().Str("collection", c.name).Stringer("kind", ev.Kind).Msg("Ignoring unknown event kind")
	}
}
