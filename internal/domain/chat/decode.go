package chat

import (
	"time"

	"inkchat/internal/store"
	inkchat_errors "inkchat/pkg/errors"
)

// decoder walks a document's fields and records the first shape mismatch.
type decoder struct {
	doc     store.Document
	failure *inkchat_errors.DecodeError
}

func newDecoder(doc store.Document) *decoder {
	return &decoder{doc: doc}
}

func (d *decoder) err() error {
	if d.failure != nil {
		return d.failure
	}
	return nil
}

func (d *decoder) fail(field, reason string) *inkchat_errors.DecodeError {
	e := &inkchat_errors.DecodeError{
		Collection: d.doc.Collection,
		DocumentID: d.doc.ID,
		Field:      field,
		Reason:     reason,
	}
	if d.failure == nil {
		d.failure = e
	}
	return e
}

func (d *decoder) string_(field string, required bool) string {
	v, ok := d.doc.Fields[field]
	if !ok || v == nil {
		if required {
			d.fail(field, "missing")
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(field, "expected string")
		return ""
	}
	return s
}

func (d *decoder) bool_(field string, required bool) bool {
	v, ok := d.doc.Fields[field]
	if !ok || v == nil {
		if required {
			d.fail(field, "missing")
		}
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(field, "expected bool")
		return false
	}
	return b
}

func (d *decoder) time_(field string, required bool) time.Time {
	s := d.string_(field, required)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		d.fail(field, "expected RFC 3339 timestamp")
		return time.Time{}
	}
	return t
}

func (d *decoder) stringSlice(field string, required bool) []string {
	v, ok := d.doc.Fields[field]
	if !ok || v == nil {
		if required {
			d.fail(field, "missing")
		}
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		d.fail(field, "expected string array")
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			d.fail(field, "expected string array")
			return nil
		}
		out = append(out, s)
	}
	return out
}
