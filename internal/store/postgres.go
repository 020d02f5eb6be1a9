package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	inkchat_errors "inkchat/pkg/errors"
	"inkchat/pkg/events"
	"inkchat/pkg/logger"
)

// DocumentRow is the single-table layout backing every collection: one jsonb
// blob per document, keyed by (collection, id).
type DocumentRow struct {
	Collection string    `gorm:"primaryKey;column:collection"`
	ID         string    `gorm:"primaryKey;column:id"`
	Data       []byte    `gorm:"column:data;type:jsonb"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (DocumentRow) TableName() string {
	return "documents"
}

// PostgresStore implements Store over a jsonb documents table. Change events
// go through the broker so every instance sees them.
type PostgresStore struct {
	db     *gorm.DB
	broker events.Broker
	log    *logger.Logger
}

func NewPostgresStore(db *gorm.DB, broker events.Broker, log *logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, broker: broker, log: log}
}

func (s *PostgresStore) Create(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	return s.CreateWithID(ctx, collection, uuid.NewString(), fields)
}

func (s *PostgresStore) CreateWithID(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return Document{}, fmt.Errorf("marshal document: %w", err)
	}

	now := time.Now().UTC()
	row := DocumentRow{
		Collection: collection,
		ID:         id,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Document{}, inkchat_errors.ErrAlreadyExists
		}
		return Document{}, err
	}

	doc, err := rowToDocument(row)
	if err != nil {
		return Document{}, err
	}
	s.publish(ctx, ActionCreate, doc)
	return doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var row DocumentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, inkchat_errors.ErrNotFound
		}
		return Document{}, err
	}
	return rowToDocument(row)
}

func (s *PostgresStore) List(ctx context.Context, collection string, query Query) (Page, error) {
	q := s.db.WithContext(ctx).Model(&DocumentRow{}).Where("collection = ?", collection)
	for _, f := range query.Filters {
		clause, args, err := compileFilter(f)
		if err != nil {
			return Page{}, err
		}
		q = q.Where(clause, args...)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page{}, err
	}

	for _, o := range query.Order {
		expr, err := compileOrder(o)
		if err != nil {
			return Page{}, err
		}
		q = q.Order(expr)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []DocumentRow
	if err := q.Limit(limit).Find(&rows).Error; err != nil {
		return Page{}, err
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return Page{}, err
		}
		docs = append(docs, doc)
	}
	return Page{Documents: docs, Total: total}, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	var updated DocumentRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DocumentRow
		if err := tx.Where("collection = ? AND id = ?", collection, id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inkchat_errors.ErrNotFound
			}
			return err
		}

		current := make(map[string]any)
		if len(row.Data) > 0 {
			if err := json.Unmarshal(row.Data, &current); err != nil {
				return fmt.Errorf("unmarshal document: %w", err)
			}
		}
		for k, v := range fields {
			current[k] = v
		}
		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}

		row.Data = data
		row.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	doc, err := rowToDocument(updated)
	if err != nil {
		return Document{}, err
	}
	s.publish(ctx, ActionUpdate, doc)
	return doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	var row DocumentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inkchat_errors.ErrNotFound
		}
		return err
	}

	res := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&DocumentRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return inkchat_errors.ErrNotFound
	}

	doc, err := rowToDocument(row)
	if err != nil {
		return err
	}
	s.publish(ctx, ActionDelete, doc)
	return nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, collection string, handler EventHandler) (Subscription, error) {
	return s.broker.Subscribe(ctx, eventChannel(collection), func(ctx context.Context, e events.Event) error {
		var event Event
		if err := json.Unmarshal(e.Payload, &event); err != nil {
			return fmt.Errorf("decode store event: %w", err)
		}
		handler(event)
		return nil
	})
}

func (s *PostgresStore) publish(ctx context.Context, action Action, doc Document) {
	payload, err := json.Marshal(Event{Collection: doc.Collection, Action: action, Document: doc})
	if err != nil {
		s.log.Errorf("store: marshal %s event for %s: %v", action, doc.Collection, err)
		return
	}
	event := events.Event{
		Type:      "store." + string(action),
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.broker.Publish(ctx, eventChannel(doc.Collection), event); err != nil {
		s.log.Errorf("store: publish %s event for %s: %v", action, doc.Collection, err)
	}
}

func eventChannel(collection string) string {
	return "store." + collection
}

func rowToDocument(row DocumentRow) (Document, error) {
	fields := make(map[string]any)
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &fields); err != nil {
			return Document{}, fmt.Errorf("unmarshal document %s/%s: %w", row.Collection, row.ID, err)
		}
	}
	return Document{
		ID:         row.ID,
		Collection: row.Collection,
		Fields:     fields,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func compileFilter(f Filter) (string, []any, error) {
	if !fieldNamePattern.MatchString(f.Field) {
		return "", nil, fmt.Errorf("%w: bad filter field %q", inkchat_errors.ErrInvalidInput, f.Field)
	}
	switch f.Op {
	case OpEqual, OpContains:
		// jsonb containment doubles as membership when the field holds an
		// array and the operand is a scalar.
		value, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, err
		}
		return "COALESCE(data->? @> ?::jsonb, false)", []any{f.Field, string(value)}, nil
	case OpNotEqual:
		value, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, err
		}
		return "NOT COALESCE(data->? @> ?::jsonb, false)", []any{f.Field, string(value)}, nil
	case OpSearch:
		term, _ := f.Value.(string)
		return "data->>? ILIKE ?", []any{f.Field, "%" + escapeLike(term) + "%"}, nil
	}
	return "", nil, fmt.Errorf("%w: unknown filter op %d", inkchat_errors.ErrInvalidInput, f.Op)
}

func compileOrder(o Order) (string, error) {
	if !fieldNamePattern.MatchString(o.Field) {
		return "", fmt.Errorf("%w: bad order field %q", inkchat_errors.ErrInvalidInput, o.Field)
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	// Timestamps are RFC 3339 strings, so text ordering is chronological.
	return fmt.Sprintf("data->>'%s' %s NULLS LAST", o.Field, dir), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
