package marketplace

import (
	"strings"
	"time"
)

// ListingID identifier type
type ListingID string

// DemoPrefix marks generated listings that are never persisted.
const DemoPrefix = "demo-"

// Listing is a dataset offered on the marketplace. Price is in L1X tokens.
type Listing struct {
	ID          ListingID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Seller      string    `json:"seller"`
	Category    string    `json:"category"`
	Sentiment   string    `json:"sentiment"`
	Created     time.Time `json:"created"`
	IsSold      bool      `json:"isSold"`
}

// IsDemo reports whether the listing was generated for demo purposes.
func (l *Listing) IsDemo() bool { return strings.HasPrefix(string(l.ID), DemoPrefix) }

// Valid reports whether the listing carries the fields the marketplace needs to show it.
func (l *Listing) Valid() bool {
	return l.ID != "" && l.Title != "" && l.Price > 0 && l.Category != "" && l.Sentiment != ""
}

// CategoryTag maps a topic category ("Finance/Markets") to its filter tag ("finance").
func CategoryTag(topic string) string {
	tag, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(topic)), "/")
	if tag == "" {
		return "general"
	}
	return tag
}

// InCategory reports whether the listing matches a category filter ("all" matches everything).
func (l *Listing) InCategory(category string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	return category == "" || category == "all" || strings.ToLower(l.Category) == category
}
