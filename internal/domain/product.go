package domain

import "time"

type Product struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	CategoryID string            `json:"category_id"`
	Brand      string            `json:"brand"`
	Price      float64           `json:"price"`
	Tags       []string          `json:"tags"`
	Specs      map[string]string `json:"specs,omitempty"`
	Active     bool              `json:"active"`
	CreatedAt  time.Time         `json:"created_at"`
}

// HasTag reports whether the product carries the given tag.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
