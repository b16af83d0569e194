// Package actions implements the bulk operations that the back office runs
// over selections of vendors, items, and category paths.
package actions

import (
	"context"
	"fmt"

	"github.com/ecommercejockey/jockey/internal/messages"
)

// Entity is a record whose relevancy flag can be toggled in bulk.
type Entity interface {
	fmt.Stringer
	EntityLabel() string
	Relevant() bool
	SetRelevant(relevant bool)
}

// Saver persists a single entity. Each save is its own write; there is no
// transaction spanning a batch.
type Saver interface {
	Save(ctx context.Context, entity Entity) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, entity Entity) error

func (f SaverFunc) Save(ctx context.Context, entity Entity) error {
	return f(ctx, entity)
}

// MarkRelevant sets every selected entity's relevancy flag to target.
// Entities already in the target state produce an up-to-date message and no
// write. A failed save produces an error message and the batch continues;
// partial failure is expected and reported per item.
func MarkRelevant(ctx context.Context, entities []Entity, target bool, saver Saver) []string {
	var msgs []string
	for _, entity := range entities {
		if entity.Relevant() == target {
			msgs = append(msgs, messages.UpToDate(
				entity.EntityLabel(), entity, alreadyDetail(target)))
			continue
		}

		entity.SetRelevant(target)
		if err := saver.Save(ctx, entity); err != nil {
			entity.SetRelevant(!target)
			msgs = append(msgs, messages.Error(entity.EntityLabel(), entity, err))
			continue
		}
		msgs = append(msgs, messages.UpdateDiff(
			entity.EntityLabel(), entity,
			map[string]any{"is_relevant": !target},
			map[string]any{"is_relevant": target},
		))
	}
	return msgs
}

func alreadyDetail(target bool) string {
	if target {
		return "already relevant"
	}
	return "already NOT relevant"
}
