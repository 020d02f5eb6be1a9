package store

import (
	"context"
	"time"
)

// Collection names used by the messaging core.
const (
	CollectionConversations = "conversations"
	CollectionMessages      = "messages"
	CollectionUsers         = "users"
)

// Document is a single record in a collection. Field values carry JSON
// shapes: string, bool, float64, []any, map[string]any.
type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type FilterOp int

const (
	// OpEqual matches a scalar field exactly. On an array field it matches
	// membership, mirroring how the hosted store's equality filter behaves
	// on list attributes.
	OpEqual FilterOp = iota
	OpNotEqual
	// OpContains matches membership in an array field.
	OpContains
	// OpSearch matches a case-insensitive substring of the field's text.
	OpSearch
)

type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

func Equal(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

func NotEqual(field string, value any) Filter {
	return Filter{Field: field, Op: OpNotEqual, Value: value}
}

func Contains(field string, value any) Filter {
	return Filter{Field: field, Op: OpContains, Value: value}
}

func Search(field string, term string) Filter {
	return Filter{Field: field, Op: OpSearch, Value: term}
}

type Order struct {
	Field string
	Desc  bool
}

func OrderAsc(field string) Order  { return Order{Field: field} }
func OrderDesc(field string) Order { return Order{Field: field, Desc: true} }

type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

// Page is one page of query results. Total is the count of all documents
// matching the filters, independent of Limit.
type Page struct {
	Documents []Document
	Total     int64
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is a change notification for a single document.
type Event struct {
	Collection string   `json:"collection"`
	Action     Action   `json:"action"`
	Document   Document `json:"document"`
}

type EventHandler func(event Event)

// Subscription is a live change-stream subscription. Close is safe to call
// multiple times; no handler fires after it returns.
type Subscription interface {
	Close() error
}

// Store is the per-collection document database the messaging core runs on:
// CRUD, filtered/ordered/paginated queries with totals, and a change-event
// subscription primitive.
type Store interface {
	Create(ctx context.Context, collection string, fields map[string]any) (Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, query Query) (Page, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	Delete(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string, handler EventHandler) (Subscription, error)
}

// CreateWithID lets callers pick the document id (user profiles use the
// account id as the document id for O(1) lookup).
type IDCreator interface {
	CreateWithID(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
}
