package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExpenses(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantIDs []string
	}{
		{"null", `null`, []string{}},
		{"empty list", `[]`, []string{}},
		{"numeric ids", `[{"id":1718000000000,"what":"Taxi","cost":12.5,"who":"Ala"}]`, []string{"1718000000000"}},
		{"string cost", `[{"id":"a","what":"Taxi","cost":"12.50","who":"Ala"}]`, []string{"a"}},
		{"sparse object", `{"1":{"id":"b","what":"x","cost":2,"who":"Ola"},"0":{"id":"a","what":"y","cost":1,"who":"Ala"}}`, []string{"a", "b"}},
		{"null holes", `[null,{"id":"a","what":"y","cost":1,"who":"Ala"},null]`, []string{"a"}},
		{"drops non-positive", `[{"id":"a","what":"y","cost":0,"who":"Ala"},{"id":"b","what":"y","cost":-3,"who":"Ala"}]`, []string{}},
		{"drops missing payer", `[{"id":"a","what":"y","cost":3}]`, []string{}},
		{"drops duplicate id", `[{"id":"a","what":"y","cost":1,"who":"Ala"},{"id":"a","what":"z","cost":2,"who":"Ola"}]`, []string{"a"}},
		{"defaults missing id", `[{"what":"y","cost":1,"who":"Ala"}]`, []string{"0"}},
		{"skips wrong element type", `["oops",{"id":"a","what":"y","cost":1,"who":"Ala"}]`, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeExpenses(json.RawMessage(tt.raw))
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDecodeExpenses_RejectsScalar(t *testing.T) {
	_, err := DecodeExpenses(json.RawMessage(`42`))
	require.Error(t, err)
}

func TestExpenseRecord_WireShape(t *testing.T) {
	e := ExpenseRecord{ID: "x1", Description: "Sauna", Amount: decimal.RequireFromString("30.50"), PayerName: "Ala"}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x1","what":"Sauna","cost":30.5,"who":"Ala"}`, string(data))

	var back ExpenseRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, e.ID, back.ID)
	assert.True(t, e.Amount.Equal(back.Amount))
}

func TestDecodeParticipants_Defaults(t *testing.T) {
	got, err := DecodeParticipants(json.RawMessage(`[{"id":"1","name":"Ala"},{"name":"Ola"},{"id":7}]`))
	require.NoError(t, err)
	assert.Equal(t, []Participant{
		{ID: "1", Name: "Ala"},
		{ID: "1", Name: "Ola"},
		{ID: "7", Name: ""},
	}, got)
}

func TestDecodeSchedule_AssignsItemIDs(t *testing.T) {
	raw := `[{"day":"Friday","items":[{"time":"16:00","title":"Check-in"},{"id":"keep","time":"18:00","title":"Dinner"}]},{"day":"Saturday"}]`
	got, err := DecodeSchedule(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d0-0", got[0].Items[0].ID)
	assert.Equal(t, "keep", got[0].Items[1].ID)
	assert.Empty(t, got[1].Items)
}

func TestDecodeStringMap_DropsNonStrings(t *testing.T) {
	got, err := DecodeStringMap(json.RawMessage(`{"a":"note","b":12,"c":null}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "note"}, got)
}

func TestErrorsMatchSentinels(t *testing.T) {
	var err error = &ValidationError{Field: "amount", Reason: "must be positive"}
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))

	err = &NotFoundError{Kind: "expense", ID: "x"}
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `expense "x" not found`, err.Error())
}
