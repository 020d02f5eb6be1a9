package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	inkchat_errors "inkchat/pkg/errors"
)

// DefaultListLimit caps List when the caller does not set one, matching the
// hosted store's default page size.
const DefaultListLimit = 25

// MemoryStore is a full in-process Store implementation. It backs the test
// suite and single-node deployments.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	nextSubID   int
	subs        map[string]map[int]*memoryStoreSub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		subs:        make(map[string]map[int]*memoryStoreSub),
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	return s.CreateWithID(ctx, collection, uuid.NewString(), fields)
}

func (s *MemoryStore) CreateWithID(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	now := time.Now().UTC()
	doc := Document{
		ID:         id,
		Collection: collection,
		Fields:     cloneFields(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	if _, exists := s.collections[collection][id]; exists {
		s.mu.Unlock()
		return Document{}, inkchat_errors.ErrAlreadyExists
	}
	s.collections[collection][id] = doc
	s.mu.Unlock()

	s.dispatch(Event{Collection: collection, Action: ActionCreate, Document: copyDocument(doc)})
	return copyDocument(doc), nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return Document{}, inkchat_errors.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) List(ctx context.Context, collection string, query Query) (Page, error) {
	s.mu.RLock()
	matched := make([]Document, 0)
	for _, doc := range s.collections[collection] {
		if matchesFilters(doc, query.Filters) {
			matched = append(matched, copyDocument(doc))
		}
	}
	s.mu.RUnlock()

	sortDocuments(matched, query.Order)

	total := int64(len(matched))
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return Page{Documents: matched, Total: total}, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return Document{}, inkchat_errors.ErrNotFound
	}
	for k, v := range cloneFields(fields) {
		doc.Fields[k] = v
	}
	doc.UpdatedAt = time.Now().UTC()
	s.collections[collection][id] = doc
	s.mu.Unlock()

	s.dispatch(Event{Collection: collection, Action: ActionUpdate, Document: copyDocument(doc)})
	return copyDocument(doc), nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return inkchat_errors.ErrNotFound
	}
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.dispatch(Event{Collection: collection, Action: ActionDelete, Document: copyDocument(doc)})
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, handler EventHandler) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	sub := &memoryStoreSub{store: s, collection: collection, id: s.nextSubID, handler: handler}
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[int]*memoryStoreSub)
	}
	s.subs[collection][sub.id] = sub
	return sub, nil
}

func (s *MemoryStore) dispatch(event Event) {
	s.mu.RLock()
	targets := make([]*memoryStoreSub, 0, len(s.subs[event.Collection]))
	for _, sub := range s.subs[event.Collection] {
		targets = append(targets, sub)
	}
	s.mu.RUnlock()

	for _, sub := range targets {
		if sub.closed.Load() {
			continue
		}
		sub.handler(event)
	}
}

type memoryStoreSub struct {
	store      *MemoryStore
	collection string
	id         int
	handler    EventHandler
	closed     atomic.Bool
	once       sync.Once
}

func (s *memoryStoreSub) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.store.mu.Lock()
		delete(s.store.subs[s.collection], s.id)
		s.store.mu.Unlock()
	})
	return nil
}

func matchesFilters(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matchesFilter(doc, f) {
			return false
		}
	}
	return true
}

func matchesFilter(doc Document, f Filter) bool {
	value, ok := doc.Fields[f.Field]
	switch f.Op {
	case OpEqual:
		if !ok {
			return false
		}
		return equalOrMember(value, f.Value)
	case OpNotEqual:
		if !ok {
			return true
		}
		return !equalOrMember(value, f.Value)
	case OpContains:
		if !ok {
			return false
		}
		list, isList := value.([]any)
		if !isList {
			return equalValue(value, f.Value)
		}
		for _, item := range list {
			if equalValue(item, f.Value) {
				return true
			}
		}
		return false
	case OpSearch:
		if !ok {
			return false
		}
		term, _ := f.Value.(string)
		return searchValue(value, term)
	}
	return false
}

// equalOrMember applies scalar equality, or membership when the stored
// field is an array.
func equalOrMember(stored, want any) bool {
	if list, ok := stored.([]any); ok {
		for _, item := range list {
			if equalValue(item, want) {
				return true
			}
		}
		return false
	}
	return equalValue(stored, want)
}

func equalValue(a, b any) bool {
	if na, ok := toFloat(a); ok {
		nb, ok := toFloat(b)
		return ok && na == nb
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func searchValue(value any, term string) bool {
	term = strings.ToLower(term)
	switch v := value.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), term)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
	}
	return false
}

// sortDocuments orders by the requested fields; documents missing a sort
// field go last regardless of direction.
func sortDocuments(docs []Document, orders []Order) {
	if len(orders) == 0 {
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		})
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range orders {
			vi, oki := docs[i].Fields[o.Field]
			vj, okj := docs[j].Fields[o.Field]
			if !oki && !okj {
				continue
			}
			if !oki {
				return false
			}
			if !okj {
				return true
			}
			cmp := compareValues(vi, vj)
			if cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			}
			return 0
		}
	}
	sa, _ := a.(string)
	sb, _ := b.(string)
	return strings.Compare(sa, sb)
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneFields(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		// Normalize to the JSON shape so reads look the same from every
		// store implementation.
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

func copyDocument(doc Document) Document {
	doc.Fields = cloneFields(doc.Fields)
	return doc
}
