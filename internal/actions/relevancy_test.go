package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntity struct {
	name     string
	relevant bool
}

func (e *fakeEntity) String() string            { return e.name }
func (e *fakeEntity) EntityLabel() string       { return "Item" }
func (e *fakeEntity) Relevant() bool            { return e.relevant }
func (e *fakeEntity) SetRelevant(relevant bool) { e.relevant = relevant }

func TestMarkRelevant(t *testing.T) {
	already := &fakeEntity{name: "GY-100", relevant: true}
	toggled := &fakeEntity{name: "GY-200"}

	var saved []Entity
	saver := SaverFunc(func(ctx context.Context, entity Entity) error {
		saved = append(saved, entity)
		return nil
	})

	msgs := MarkRelevant(context.Background(), []Entity{already, toggled}, true, saver)
	assert.Equal(t, []string{
		"Info: Item GY-100, already relevant",
		"Success: Item GY-200 updated, is_relevant: false -> true",
	}, msgs)

	require.Len(t, saved, 1)
	assert.Same(t, toggled, saved[0])
	assert.True(t, toggled.relevant)
}

func TestMarkRelevantClears(t *testing.T) {
	entity := &fakeEntity{name: "GY-100", relevant: true}
	saver := SaverFunc(func(ctx context.Context, entity Entity) error { return nil })

	msgs := MarkRelevant(context.Background(), []Entity{entity}, false, saver)
	assert.Equal(t, []string{"Success: Item GY-100 updated, is_relevant: true -> false"}, msgs)
	assert.False(t, entity.relevant)

	msgs = MarkRelevant(context.Background(), []Entity{entity}, false, saver)
	assert.Equal(t, []string{"Info: Item GY-100, already NOT relevant"}, msgs)
}

func TestMarkRelevantSaveFailureRollsBack(t *testing.T) {
	good := &fakeEntity{name: "GY-100"}
	bad := &fakeEntity{name: "GY-200"}

	saver := SaverFunc(func(ctx context.Context, entity Entity) error {
		if entity == Entity(bad) {
			return errors.New("connection reset")
		}
		return nil
	})

	msgs := MarkRelevant(context.Background(), []Entity{bad, good}, true, saver)
	assert.Equal(t, []string{
		"Error: Item GY-200, connection reset",
		"Success: Item GY-100 updated, is_relevant: false -> true",
	}, msgs)

	assert.False(t, bad.relevant)
	assert.True(t, good.relevant)
}
