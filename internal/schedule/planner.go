// Package schedule edits the day-by-day itinerary and the per-item notes that go
// with it. The itinerary lives under one path as a whole; notes and their editor
// heights are flat maps keyed by item id under two more paths.
package schedule

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/sheikh-saqib/tripsync/internal/synced"
)

// Planner wraps the schedule cells.
type Planner struct {
	days    *synced.Cell[[]models.DayPlan]
	notes   *synced.Cell[map[string]string]
	heights *synced.Cell[map[string]string]
	newID   func() string
}

// New creates a Planner. days should be bound with a nil initial value so that
// Seed can tell an empty itinerary from a missing one.
func New(days *synced.Cell[[]models.DayPlan], notes, heights *synced.Cell[map[string]string]) *Planner {
	return &Planner{days: days, notes: notes, heights: heights, newID: uuid.NewString}
}

// Seed waits for the first remote observation and, if no itinerary was stored,
// writes defaults. Items without an id get one.
func (p *Planner) Seed(ctx context.Context, defaults []models.DayPlan) (bool, error) {
	select {
	case <-p.days.Ready():
	case <-ctx.Done():
		return false, ctx.Err()
	}

	seeded := false
	p.days.Update(func(current []models.DayPlan) []models.DayPlan {
		if current != nil {
			return current
		}
		seeded = true
		out := make([]models.DayPlan, len(defaults))
		for d, day := range defaults {
			out[d] = models.DayPlan{Day: day.Day, Items: slices.Clone(day.Items)}
			for i := range out[d].Items {
				if out[d].Items[i].ID == "" {
					out[d].Items[i].ID = p.newID()
				}
			}
		}
		return out
	})
	return seeded, nil
}

// Days returns the itinerary. Day plans are copied, items are shared.
func (p *Planner) Days() []models.DayPlan {
	return slices.Clone(p.days.Read())
}

// SaveItem replaces the item with the same id on day, or inserts it at insertAt.
// An insertAt outside the list appends. An item without an id gets one.
func (p *Planner) SaveItem(day int, item models.ScheduleItem, insertAt int) (models.ScheduleItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return models.ScheduleItem{}, &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if item.ID == "" {
		item.ID = p.newID()
	}
	if err := p.checkDay(day); err != nil {
		return models.ScheduleItem{}, err
	}

	p.editDay(day, func(items []models.ScheduleItem) []models.ScheduleItem {
		if i := indexOf(items, item.ID); i >= 0 {
			if item.Images == nil {
				// the item editor does not carry photos
				item.Images = items[i].Images
			}
			items[i] = item
			return items
		}
		if insertAt < 0 || insertAt > len(items) {
			return append(items, item)
		}
		return slices.Insert(items, insertAt, item)
	})
	return item, nil
}

// DeleteItem removes one item from day.
func (p *Planner) DeleteItem(day int, id string) error {
	if err := p.checkItem(day, id); err != nil {
		return err
	}
	p.editDay(day, func(items []models.ScheduleItem) []models.ScheduleItem {
		return slices.DeleteFunc(items, func(it models.ScheduleItem) bool { return it.ID == id })
	})
	return nil
}

// MoveItem moves the item fromID to the position currently held by toID, shifting
// the items in between.
func (p *Planner) MoveItem(day int, fromID, toID string) error {
	if err := p.checkItem(day, fromID); err != nil {
		return err
	}
	if err := p.checkItem(day, toID); err != nil {
		return err
	}
	if fromID == toID {
		return nil
	}
	p.editDay(day, func(items []models.ScheduleItem) []models.ScheduleItem {
		from, to := indexOf(items, fromID), indexOf(items, toID)
		if from < 0 || to < 0 {
			return items
		}
		moved := items[from]
		items = slices.Delete(items, from, from+1)
		return slices.Insert(items, to, moved)
	})
	return nil
}

// SetPhotos replaces the image list of one item.
func (p *Planner) SetPhotos(day int, id string, images []string) error {
	if err := p.checkItem(day, id); err != nil {
		return err
	}
	p.editDay(day, func(items []models.ScheduleItem) []models.ScheduleItem {
		if i := indexOf(items, id); i >= 0 {
			items[i].Images = slices.Clone(images)
		}
		return items
	})
	return nil
}

// Note returns the note of an item, "" when there is none.
func (p *Planner) Note(itemID string) string {
	return p.notes.Read()[itemID]
}

// NoteHeight returns the stored editor height of an item's note.
func (p *Planner) NoteHeight(itemID string) string {
	return p.heights.Read()[itemID]
}

// SetNote stores the note text of an item.
func (p *Planner) SetNote(itemID, text string) {
	p.notes.Update(withKey(itemID, text))
}

// SetNoteHeight stores the editor height of an item's note. Setting the height it
// already has writes nothing.
func (p *Planner) SetNoteHeight(itemID, height string) {
	p.heights.Update(withKey(itemID, height))
}

func withKey(key, value string) func(map[string]string) map[string]string {
	return func(current map[string]string) map[string]string {
		if v, ok := current[key]; ok && v == value {
			return current
		}
		next := maps.Clone(current)
		if next == nil {
			next = make(map[string]string, 1)
		}
		next[key] = value
		return next
	}
}

// editDay replaces day with a new plan whose items fn derived from a private copy.
func (p *Planner) editDay(day int, fn func(items []models.ScheduleItem) []models.ScheduleItem) {
	p.days.Update(func(current []models.DayPlan) []models.DayPlan {
		if day < 0 || day >= len(current) {
			return current
		}
		next := slices.Clone(current)
		next[day] = models.DayPlan{Day: current[day].Day, Items: fn(slices.Clone(current[day].Items))}
		return next
	})
}

func (p *Planner) checkDay(day int) error {
	_, err := dayOf(p.days.Read(), day)
	return err
}

// checkItem looks at a single snapshot: a remote update may shrink the schedule
// between two reads.
func (p *Planner) checkItem(day int, id string) error {
	d, err := dayOf(p.days.Read(), day)
	if err != nil {
		return err
	}
	if indexOf(d.Items, id) < 0 {
		return &models.NotFoundError{Kind: "schedule item", ID: id}
	}
	return nil
}

func dayOf(days []models.DayPlan, day int) (models.DayPlan, error) {
	if day < 0 || day >= len(days) {
		return models.DayPlan{}, &models.NotFoundError{Kind: "day", ID: strconv.Itoa(day)}
	}
	return days[day], nil
}

func indexOf(items []models.ScheduleItem, id string) int {
	return slices.IndexFunc(items, func(it models.ScheduleItem) bool { return it.ID == id })
}
