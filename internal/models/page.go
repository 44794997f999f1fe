package models

import (
	"bytes"
	"encoding/json"
)

// Page of list endpoint
// Backend answers either with paginated object or with bare array, both are accepted
type Page[T any] struct {
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*p = Page[T]{Results: items, Count: len(items)}
		return nil
	}

	var raw struct {
		Results  []T     `json:"results"`
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Count == 0 {
		raw.Count = len(raw.Results)
	}

	*p = Page[T]{Results: raw.Results, Count: raw.Count, Next: raw.Next, Previous: raw.Previous}
	return nil
}

func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}
