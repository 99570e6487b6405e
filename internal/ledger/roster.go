package ledger

import (
	"slices"

	"github.com/sheikh-saqib/tripsync/internal/models"
)

// Roster returns a copy of the squad in display order.
func (l *Ledger) Roster() []models.Participant {
	return slices.Clone(l.squad.Read())
}

// AddParticipant appends a member. The name may be empty and filled in later.
func (l *Ledger) AddParticipant(name string) models.Participant {
	member := models.Participant{ID: l.newID(), Name: name}
	l.squad.Update(func(current []models.Participant) []models.Participant {
		next := make([]models.Participant, 0, len(current)+1)
		next = append(next, current...)
		return append(next, member)
	})
	return member
}

// RenameParticipant changes a display name. Expenses keep the payer name they
// were recorded with.
func (l *Ledger) RenameParticipant(id, name string) error {
	idx := slices.IndexFunc(l.squad.Read(), func(p models.Participant) bool { return p.ID == id })
	if idx < 0 {
		return &models.NotFoundError{Kind: "participant", ID: id}
	}

	l.squad.Update(func(current []models.Participant) []models.Participant {
		next := slices.Clone(current)
		for i := range next {
			if next[i].ID == id {
				next[i].Name = name
			}
		}
		return next
	})
	return nil
}

// RemoveParticipant drops a member from the squad.
func (l *Ledger) RemoveParticipant(id string) error {
	match := func(p models.Participant) bool { return p.ID == id }
	if !slices.ContainsFunc(l.squad.Read(), match) {
		return &models.NotFoundError{Kind: "participant", ID: id}
	}

	l.squad.Update(func(current []models.Participant) []models.Participant {
		return slices.DeleteFunc(slices.Clone(current), match)
	})
	return nil
}

// LoadDefaultRoster fills an empty squad with defaults. It reports whether it did.
func (l *Ledger) LoadDefaultRoster(defaults []models.Participant) bool {
	loaded := false
	l.squad.Update(func(current []models.Participant) []models.Participant {
		if len(current) > 0 || len(defaults) == 0 {
			return current
		}
		loaded = true
		return slices.Clone(defaults)
	})
	return loaded
}
