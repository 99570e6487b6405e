// Package packing keeps the shared packing list of the trip.
package packing

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/sheikh-saqib/tripsync/internal/synced"
)

// List wraps the "packing-list" cell.
type List struct {
	cell  *synced.Cell[[]models.PackingItem]
	newID func() string
}

// New creates a List. The cell should be bound with a nil initial value so that
// Seed can tell an empty list from a missing one.
func New(cell *synced.Cell[[]models.PackingItem]) *List {
	return &List{cell: cell, newID: uuid.NewString}
}

// Seed waits for the first remote observation and, if nothing was stored at the
// path, writes defaults as unchecked items. It reports whether it wrote.
func (l *List) Seed(ctx context.Context, defaults []string) (bool, error) {
	select {
	case <-l.cell.Ready():
	case <-ctx.Done():
		return false, ctx.Err()
	}

	seeded := false
	l.cell.Update(func(current []models.PackingItem) []models.PackingItem {
		if current != nil {
			return current
		}
		seeded = true
		items := make([]models.PackingItem, 0, len(defaults))
		for _, text := range defaults {
			items = append(items, models.PackingItem{ID: l.newID(), Text: text})
		}
		return items
	})
	return seeded, nil
}

// Items returns a copy of the list.
func (l *List) Items() []models.PackingItem {
	return slices.Clone(l.cell.Read())
}

// Add appends an unchecked item.
func (l *List) Add(text string) (models.PackingItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.PackingItem{}, &models.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	item := models.PackingItem{ID: l.newID(), Text: text}
	l.cell.Update(func(current []models.PackingItem) []models.PackingItem {
		next := make([]models.PackingItem, 0, len(current)+1)
		next = append(next, current...)
		return append(next, item)
	})
	return item, nil
}

// Toggle flips the checked state of one item.
func (l *List) Toggle(id string) error {
	if !l.has(id) {
		return &models.NotFoundError{Kind: "packing item", ID: id}
	}
	l.cell.Update(func(current []models.PackingItem) []models.PackingItem {
		next := slices.Clone(current)
		for i := range next {
			if next[i].ID == id {
				next[i].Checked = !next[i].Checked
			}
		}
		return next
	})
	return nil
}

// Delete removes one item.
func (l *List) Delete(id string) error {
	if !l.has(id) {
		return &models.NotFoundError{Kind: "packing item", ID: id}
	}
	l.cell.Update(func(current []models.PackingItem) []models.PackingItem {
		return slices.DeleteFunc(slices.Clone(current), func(it models.PackingItem) bool { return it.ID == id })
	})
	return nil
}

// Progress returns how many items are checked out of how many.
func (l *List) Progress() (done, total int) {
	items := l.cell.Read()
	for _, it := range items {
		if it.Checked {
			done++
		}
	}
	return done, len(items)
}

func (l *List) has(id string) bool {
	return slices.ContainsFunc(l.cell.Read(), func(it models.PackingItem) bool { return it.ID == id })
}
