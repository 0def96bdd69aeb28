package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Price
		wantErr bool
	}{
		{"number", `12.5`, 12.5, false},
		{"string", `"12.99"`, 12.99, false},
		{"padded string", `" 7 "`, 7, false},
		{"null", `null`, 0, false},
		{"word", `"cheap"`, 0, true},
		{"negative", `-1`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, float64(tt.want), float64(p), 1e-9)
		})
	}
}

func TestMenuResponseDecode(t *testing.T) {
	payload := `{"menu":[
		{"name":"Greek Salad","price":"12.99","description":"Crispy lettuce","image":"greekSalad.jpg","category":"starters"},
		{"name":"Pasta","price":18,"description":"","image":"pasta.jpg"}
	]}`

	var resp MenuResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.Menu, 2)
	assert.Equal(t, "Greek Salad", resp.Menu[0].Name)
	assert.InDelta(t, 12.99, float64(resp.Menu[0].Price), 1e-9)
	assert.Equal(t, "", resp.Menu[1].Category)
}

func TestNormalize(t *testing.T) {
	in := []MenuItem{
		{Name: "Pasta"},
		{Name: "Soup", Category: "  "},
		{Name: "Bruschetta", Category: "Starters"},
	}

	out := Normalize(in)

	assert.Equal(t, DefaultCategory, out[0].Category)
	assert.Equal(t, DefaultCategory, out[1].Category)
	assert.Equal(t, "Starters", out[2].Category)
	assert.Equal(t, "", in[0].Category, "input must not be modified")
}

func TestDisplayDescription(t *testing.T) {
	assert.Equal(t, NoDescription, MenuItem{}.DisplayDescription())
	assert.Equal(t, "Lemony", MenuItem{Description: "Lemony"}.DisplayDescription())
}
