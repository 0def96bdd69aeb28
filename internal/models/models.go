package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCategory is assigned to menu entries that arrive without a category.
const DefaultCategory = "mains"

// NoDescription is shown in place of an empty description.
const NoDescription = "No description available"

// Price is a non-negative amount that accepts both JSON numbers and numeric strings.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", data, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("invalid price %s: out of range", data)
	}

	*p = Price(v)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(p))
}

// MenuItem is one dish of the menu.
type MenuItem struct {
	ID          int    `json:"-"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// DisplayDescription returns the description or a placeholder if it is empty.
func (m MenuItem) DisplayDescription() string {
	if strings.TrimSpace(m.Description) == "" {
		return NoDescription
	}
	return m.Description
}

// Normalize assigns DefaultCategory to entries without a category.
func Normalize(items []MenuItem) []MenuItem {
	out := make([]MenuItem, len(items))
	for i, item := range items {
		item.Category = strings.TrimSpace(item.Category)
		if item.Category == "" {
			item.Category = DefaultCategory
		}
		out[i] = item
	}
	return out
}

// MenuResponse is the remote payload shape.
type MenuResponse struct {
	Menu []MenuItem `json:"menu"`
}

// FilterState holds the search query and the selected category of a session.
// An empty field means no restriction.
type FilterState struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

// MenuItemView is a menu entry ready to be displayed.
type MenuItemView struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	PriceLabel  string  `json:"price_label"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
}

// HomeView is a snapshot of the home session.
type HomeView struct {
	Query    string         `json:"query"`
	Category string         `json:"category"`
	Loading  bool           `json:"loading"`
	Error    string         `json:"error,omitempty"`
	Items    []MenuItemView `json:"items"`
}

// Profile holds the personal information kept in the preferences store.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
