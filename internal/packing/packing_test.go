package packing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/sheikh-saqib/tripsync/internal/storage/memory"
	"github.com/sheikh-saqib/tripsync/internal/synced"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newList(t *testing.T, store *memory.Store) (*List, *synced.Cell[[]models.PackingItem]) {
	t.Helper()
	cell, err := synced.Bind[[]models.PackingItem](context.Background(), store, "packing-list", nil, models.DecodePackingItems,
		synced.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(cell.Close)
	return New(cell), cell
}

func TestSeed_WritesDefaultsOnlyWhenNothingStored(t *testing.T) {
	store := memory.NewStore()
	list, cell := newList(t, store)

	seeded, err := list.Seed(context.Background(), []string{"Passport", "Charger"})
	require.NoError(t, err)
	assert.True(t, seeded)

	items := list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Passport", items[0].Text)
	assert.False(t, items[0].Checked)
	assert.NotEmpty(t, items[0].ID)

	cell.Wait()
	again, _ := newList(t, store)
	seeded, err = again.Seed(context.Background(), []string{"Other"})
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Len(t, again.Items(), 2)
}

func TestSeed_EmptyListIsNotMissing(t *testing.T) {
	store := memory.NewStore()
	store.Seed("packing-list", json.RawMessage(`[]`))
	list, _ := newList(t, store)

	seeded, err := list.Seed(context.Background(), []string{"Passport"})
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Empty(t, list.Items())
}

func TestAddToggleDelete(t *testing.T) {
	list, _ := newList(t, memory.NewStore())

	_, err := list.Add("   ")
	assert.True(t, errors.Is(err, models.ErrValidation))

	sunscreen, err := list.Add(" Sunscreen ")
	require.NoError(t, err)
	assert.Equal(t, "Sunscreen", sunscreen.Text)
	hat, _ := list.Add("Hat")

	require.NoError(t, list.Toggle(sunscreen.ID))
	done, total := list.Progress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)

	require.NoError(t, list.Toggle(sunscreen.ID))
	done, _ = list.Progress()
	assert.Equal(t, 0, done)

	require.NoError(t, list.Delete(hat.ID))
	assert.Len(t, list.Items(), 1)

	assert.True(t, errors.Is(list.Toggle("ghost"), models.ErrNotFound))
	assert.True(t, errors.Is(list.Delete("ghost"), models.ErrNotFound))
}
