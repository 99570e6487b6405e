package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// The decoders below parse raw values read from the shared store. Other clients
// write the same paths, so nothing is trusted structurally: lists may arrive as
// objects keyed by index, elements may be null, fields may be missing. Missing
// fields get explicit defaults, and records that would break an invariant are dropped.

// DecodeParticipants parses the "squad" path. A missing id defaults to the
// element's position.
func DecodeParticipants(raw json.RawMessage) ([]Participant, error) {
	elems, err := elements(raw)
	if err != nil {
		return nil, fmt.Errorf("decode squad: %w", err)
	}
	out := make([]Participant, 0, len(elems))
	for i, elem := range elems {
		var p struct {
			ID   json.RawMessage `json:"id"`
			Name *string         `json:"name"`
		}
		if err := json.Unmarshal(elem, &p); err != nil {
			continue
		}
		member := Participant{ID: scalarString(p.ID)}
		if member.ID == "" {
			member.ID = strconv.Itoa(i)
		}
		if p.Name != nil {
			member.Name = *p.Name
		}
		out = append(out, member)
	}
	return out, nil
}

// DecodeExpenses parses the "budget" path. Records with a non-positive amount, an
// empty payer, or an id already seen are dropped. The next local write replaces
// the whole list, so dropped records disappear from the store for every client.
func DecodeExpenses(raw json.RawMessage) ([]ExpenseRecord, error) {
	elems, err := elements(raw)
	if err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	out := make([]ExpenseRecord, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for i, elem := range elems {
		var e ExpenseRecord
		if err := json.Unmarshal(elem, &e); err != nil {
			continue
		}
		if e.ID == "" {
			e.ID = strconv.Itoa(i)
		}
		if !e.Amount.IsPositive() || e.PayerName == "" {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

// DecodePackingItems parses the "packing-list" path.
func DecodePackingItems(raw json.RawMessage) ([]PackingItem, error) {
	elems, err := elements(raw)
	if err != nil {
		return nil, fmt.Errorf("decode packing list: %w", err)
	}
	out := make([]PackingItem, 0, len(elems))
	for i, elem := range elems {
		var item struct {
			ID      json.RawMessage `json:"id"`
			Text    string          `json:"text"`
			Checked bool            `json:"checked"`
		}
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		id := scalarString(item.ID)
		if id == "" {
			id = strconv.Itoa(i)
		}
		out = append(out, PackingItem{ID: id, Text: item.Text, Checked: item.Checked})
	}
	return out, nil
}

// DecodeSchedule parses the "schedule-data" path. Items without an id get one
// derived from their day and position so they stay addressable.
func DecodeSchedule(raw json.RawMessage) ([]DayPlan, error) {
	days, err := elements(raw)
	if err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	out := make([]DayPlan, 0, len(days))
	for d, dayRaw := range days {
		var day struct {
			Day   string          `json:"day"`
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(dayRaw, &day); err != nil {
			continue
		}
		itemElems, err := elements(day.Items)
		if err != nil {
			itemElems = nil
		}
		plan := DayPlan{Day: day.Day, Items: make([]ScheduleItem, 0, len(itemElems))}
		for i, itemRaw := range itemElems {
			var item ScheduleItem
			if err := json.Unmarshal(itemRaw, &item); err != nil {
				continue
			}
			if item.ID == "" {
				item.ID = fmt.Sprintf("d%d-%d", d, i)
			}
			plan.Items = append(plan.Items, item)
		}
		out = append(out, plan)
	}
	return out, nil
}

// DecodeStringMap parses the note maps ("schedule-notes-v2",
// "schedule-note-heights-v2"). Non-string values are dropped.
func DecodeStringMap(raw json.RawMessage) (map[string]string, error) {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode string map: %w", err)
	}
	out := make(map[string]string, len(generic))
	for k, v := range generic {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		out[k] = s
	}
	return out, nil
}

// elements splits a JSON list into its non-null elements. Objects keyed by
// numeric index (how sparse arrays come back from realtime stores) are accepted
// and returned in index order.
func elements(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var list []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	case '{':
		var byIndex map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byIndex); err != nil {
			return nil, err
		}
		indexes := make([]int, 0, len(byIndex))
		for k := range byIndex {
			if i, err := strconv.Atoi(k); err == nil {
				indexes = append(indexes, i)
			}
		}
		sort.Ints(indexes)
		for _, i := range indexes {
			list = append(list, byIndex[strconv.Itoa(i)])
		}
	default:
		return nil, fmt.Errorf("expected a list, got %.20s", raw)
	}

	out := list[:0]
	for _, elem := range list {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			continue
		}
		out = append(out, elem)
	}
	return out, nil
}
