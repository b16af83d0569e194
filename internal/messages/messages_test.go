package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestClassMessages(t *testing.T) {
	assert.Equal(t, "Info: Vendors, everything up-to-date", ClassUpToDate("Vendors"))
	assert.Equal(t, "Info: Items, nothing new", ClassNothingNew("Items"))
	assert.Equal(t, "Error: Items, boom", ClassError("Items", errors.New("boom")))
}

func TestEntityMessages(t *testing.T) {
	entity := stringer("goodyear")

	assert.Equal(t, "Info: Vendor goodyear, already up-to-date", UpToDate("Vendor", entity, ""))
	assert.Equal(t, "Info: Vendor goodyear, nothing to push", UpToDate("Vendor", entity, "nothing to push"))
	assert.Equal(t, "Success: Vendor goodyear created", CreateSuccess("Vendor", entity))
	assert.Equal(t, "Success: Vendor goodyear updated", UpdateSuccess("Vendor", entity, ""))
	assert.Equal(t, "Success: Vendor goodyear updated, slug updated", UpdateSuccess("Vendor", entity, "slug updated"))
	assert.Equal(t, "Error: Vendor goodyear, boom", Error("Vendor", entity, errors.New("boom")))
}

func TestUpdateDiff(t *testing.T) {
	entity := stringer("P100")

	t.Run("changed fields listed in key order", func(t *testing.T) {
		msg := UpdateDiff("Product", entity,
			map[string]any{"cost": 10.0, "jobber": 20.0},
			map[string]any{"cost": 12.5, "jobber": 20.0},
		)
		assert.Equal(t, "Success: Product P100 updated, cost: 10 -> 12.5", msg)
	})

	t.Run("new field shows zero previous", func(t *testing.T) {
		msg := UpdateDiff("Product", entity,
			map[string]any{},
			map[string]any{"map": 15.0},
		)
		assert.Equal(t, "Success: Product P100 updated, map: <nil> -> 15", msg)
	})

	t.Run("no changes falls back to up-to-date", func(t *testing.T) {
		msg := UpdateDiff("Product", entity,
			map[string]any{"cost": 10.0},
			map[string]any{"cost": 10.0},
		)
		assert.Equal(t, "Info: Product P100, already up-to-date", msg)
	})
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityInfo, SeverityOf("Info: fine"))
	assert.Equal(t, SeveritySuccess, SeverityOf("Success: done"))
	assert.Equal(t, SeverityError, SeverityOf("Error: bad"))
	assert.Equal(t, SeverityError, SeverityOf("unprefixed"))
}

func TestFilter(t *testing.T) {
	msgs := []string{
		"Info: Vendor a, already up-to-date",
		"Success: Vendor b created",
		"Error: Vendor c, boom",
	}

	t.Run("include info passes through", func(t *testing.T) {
		assert.Equal(t, msgs, Filter(msgs, true, "Vendors"))
	})

	t.Run("drop info", func(t *testing.T) {
		kept := Filter(msgs, false, "Vendors")
		assert.Equal(t, []string{
			"Success: Vendor b created",
			"Error: Vendor c, boom",
		}, kept)
	})

	t.Run("nothing left substitutes class message", func(t *testing.T) {
		kept := Filter([]string{"Info: Vendor a, already up-to-date"}, false, "Vendors")
		assert.Equal(t, []string{"Info: Vendors, everything up-to-date"}, kept)
	})
}
