// Package events publishes lifecycle notifications to the broker. Delivery is
// at-most-once and best-effort: nothing here ever fails a business operation.
package events

import (
	"errors"
	"strings"
)

// Kind tags the first segment of every payload.
type Kind string

const (
	UserRegistered Kind = "USER_REGISTERED"
	UserUpdated    Kind = "USER_UPDATED"
	UserDeleted    Kind = "USER_DELETED"

	ProductCreated Kind = "PRODUCT_CREATED"
	ProductUpdated Kind = "PRODUCT_UPDATED"
	ProductDeleted Kind = "PRODUCT_DELETED"

	MediaUploaded Kind = "MEDIA_UPLOADED"
	MediaDeleted  Kind = "MEDIA_DELETED"
)

const sep = ":"

// Event is one outbound notification. IDs are ordered per kind, e.g.
// PRODUCT_CREATED carries {productId, userId}.
type Event struct {
	Kind Kind
	IDs  []string
}

// New builds an Event from its kind and identifiers.
func New(kind Kind, ids ...string) Event {
	return Event{Kind: kind, IDs: ids}
}

// Key is the partition key: the id of the entity the event is about.
func (e Event) Key() string {
	if len(e.IDs) == 0 {
		return ""
	}
	return e.IDs[0]
}

// Encode renders the colon-delimited wire payload. Empty trailing ids (an
// optional productId, say) are dropped. Interior ids keep their position even
// when empty; Validate rejects such events before they are published.
func (e Event) Encode() string {
	ids := e.trimmed()
	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, string(e.Kind))
	parts = append(parts, ids...)
	return strings.Join(parts, sep)
}

// Validate reports ErrMalformedPayload when the kind is empty, no id is set, or
// an id before the last non-empty one is empty.
func (e Event) Validate() error {
	ids := e.trimmed()
	if e.Kind == "" || len(ids) == 0 {
		return ErrMalformedPayload
	}
	for _, id := range ids {
		if id == "" {
			return ErrMalformedPayload
		}
	}
	return nil
}

func (e Event) trimmed() []string {
	n := len(e.IDs)
	for n > 0 && e.IDs[n-1] == "" {
		n--
	}
	return e.IDs[:n]
}

var ErrMalformedPayload = errors.New("malformed event payload")

// Decode parses a payload produced by Encode.
func Decode(payload string) (Event, error) {
	parts := strings.Split(payload, sep)
	if len(parts) < 2 || parts[0] == "" {
		return Event{}, ErrMalformedPayload
	}
	for _, p := range parts[1:] {
		if p == "" {
			return Event{}, ErrMalformedPayload
		}
	}
	return Event{Kind: Kind(parts[0]), IDs: parts[1:]}, nil
}
