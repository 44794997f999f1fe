// Package checklist keeps packing checklist of a trip in local store.
package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/localstore"
	"github.com/nkiryanov/triply/internal/models"
)

const (
	CategoryDocuments   = "Documents"
	CategoryClothing    = "Clothing"
	CategoryToiletries  = "Toiletries"
	CategoryElectronics = "Electronics"
	CategoryMedical     = "Medical"
	CategoryOther       = "Other"
)

// Categories in display order
var Categories = []string{
	CategoryDocuments,
	CategoryClothing,
	CategoryToiletries,
	CategoryElectronics,
	CategoryMedical,
	CategoryOther,
}

type Item struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Checked  bool   `json:"checked"`
	Category string `json:"category"`
}

func DefaultItems() []Item {
	defaults := []struct {
		category string
		texts    []string
	}{
		{CategoryDocuments, []string{"Passport", "Visa", "Flight tickets", "Hotel reservations", "Travel insurance"}},
		{CategoryClothing, []string{"Shirts/T-shirts", "Pants/Jeans", "Underwear", "Socks", "Jacket", "Shoes"}},
		{CategoryToiletries, []string{"Toothbrush & toothpaste", "Shampoo & soap", "Deodorant", "Sunscreen"}},
		{CategoryElectronics, []string{"Phone charger", "Power bank", "Camera", "Headphones"}},
		{CategoryMedical, []string{"Prescription medications", "First aid kit", "Pain relievers"}},
	}

	items := make([]Item, 0, 22)
	for _, group := range defaults {
		for _, text := range group.texts {
			items = append(items, Item{
				ID:       fmt.Sprint(len(items) + 1),
				Text:     text,
				Category: group.category,
			})
		}
	}
	return items
}

// Key of the trip checklist in local store
func Key(trip models.ID) string {
	if trip.IsZero() {
		return "checklist_default"
	}
	return "checklist_" + trip.String()
}

type Checklist struct {
	store localstore.Store
	key   string
}

// New returns checklist of the trip, trip may be empty for the default one
func New(store localstore.Store, trip models.ID) *Checklist {
	return &Checklist{store: store, key: Key(trip)}
}

// Items returns saved items or default ones if nothing saved yet
func (c *Checklist) Items(ctx context.Context) ([]Item, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("error while reading checklist. Err: %w", err)
	}
	if !ok {
		return DefaultItems(), nil
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("error while decoding checklist. Err: %w", err)
	}
	return items, nil
}

// Add item, unknown category falls back to Other
func (c *Checklist) Add(ctx context.Context, text string, category string) (Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, apperrors.ErrChecklistItemEmpty
	}

	items, err := c.Items(ctx)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		ID:       uuid.NewString(),
		Text:     text,
		Category: normalizeCategory(category),
	}
	items = append(items, item)

	return item, c.save(ctx, items)
}

func (c *Checklist) Toggle(ctx context.Context, id string) (Item, error) {
	return c.update(ctx, id, func(item *Item) error {
		item.Checked = !item.Checked
		return nil
	})
}

func (c *Checklist) Edit(ctx context.Context, id string, text string) (Item, error) {
	return c.update(ctx, id, func(item *Item) error {
		text = strings.TrimSpace(text)
		if text == "" {
			return apperrors.ErrChecklistItemEmpty
		}
		item.Text = text
		return nil
	})
}

func (c *Checklist) Remove(ctx context.Context, id string) error {
	items, err := c.Items(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return apperrors.ErrChecklistItemAbsent
	}

	return c.save(ctx, kept)
}

// ClearCompleted removes checked items and returns how many were removed
func (c *Checklist) ClearCompleted(ctx context.Context) (int, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.Checked {
			kept = append(kept, item)
		}
	}

	return len(items) - len(kept), c.save(ctx, kept)
}

// Reset returns checklist to default items
func (c *Checklist) Reset(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("error while resetting checklist. Err: %w", err)
	}
	return nil
}

func (c *Checklist) update(ctx context.Context, id string, fn func(item *Item) error) (Item, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return Item{}, err
	}

	for i := range items {
		if items[i].ID != id {
			continue
		}
		if err := fn(&items[i]); err != nil {
			return Item{}, err
		}
		return items[i], c.save(ctx, items)
	}

	return Item{}, apperrors.ErrChecklistItemAbsent
}

func (c *Checklist) save(ctx context.Context, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("error while encoding checklist. Err: %w", err)
	}
	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		return fmt.Errorf("error while saving checklist. Err: %w", err)
	}
	return nil
}

type Progress struct {
	Checked int
	Total   int
	Percent int
}

func ProgressOf(items []Item) Progress {
	p := Progress{Total: len(items)}
	for _, item := range items {
		if item.Checked {
			p.Checked++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Checked) / float64(p.Total) * 100))
	}
	return p
}

type Group struct {
	Category string
	Items    []Item
}

// Grouped returns non empty groups in display order
func Grouped(items []Item) []Group {
	byCategory := make(map[string][]Item)
	for _, item := range items {
		category := normalizeCategory(item.Category)
		byCategory[category] = append(byCategory[category], item)
	}

	groups := make([]Group, 0, len(Categories))
	for _, category := range Categories {
		if len(byCategory[category]) > 0 {
			groups = append(groups, Group{Category: category, Items: byCategory[category]})
		}
	}
	return groups
}

func normalizeCategory(category string) string {
	for _, c := range Categories {
		if strings.EqualFold(c, category) {
			return c
		}
	}
	return CategoryOther
}
