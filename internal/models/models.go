// package models defines the data model for the collaborative playlist service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Entity holds the identity and bookkeeping fields shared by every persisted model.
//
// Repositories assign the ID and sequence on insert.
type Entity struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
}

func newEntity(now time.Time) Entity {
	now = Millis(now)
	return Entity{createdAt: now, updatedAt: now}
}

func (e *Entity) ID() string { return e.id }
func (e *Entity) SetID(id string) { e.id = id }
func (e *Entity) Sequence() int { return e.sequence }
func (e *Entity) SetSequence(seq int) { e.sequence = seq }
func (e *Entity) CreatedAt() time.Time { return e.createdAt }
func (e *Entity) SetCreatedAt(t time.Time) { e.createdAt = t }
func (e *Entity) UpdatedAt() time.Time { return e.updatedAt }
func (e *Entity) SetUpdatedAt(t time.Time) { e.updatedAt = t }

// Millis truncates t to millisecond precision in UTC.
func Millis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
