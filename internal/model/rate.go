package model

// Rate is one live board entry: the base price per gram for a metal at a
// given purity, as published by the backend's rate feed.
type Rate struct {
	Metal        Metal   `json:"metal"`
	Purity       string  `json:"purity,omitempty"`
	PricePerGram float64 `json:"pricePerGram"`
	UpdatedAt    Millis  `json:"updatedAt"`
}

// RateBoard is the full snapshot the dashboard renders.
type RateBoard struct {
	Rates     []Rate `json:"rates"`
	FetchedAt Millis `json:"fetchedAt"`
}

// Lookup finds the board entry for a metal, preferring an exact purity
// match and falling back to the first entry for the metal.
func (b *RateBoard) Lookup(metal Metal, purity string) (Rate, bool) {
	var fallback *Rate
	for i := range b.Rates {
		r := &b.Rates[i]
		if r.Metal != metal {
			continue
		}
		if r.Purity == purity {
			return *r, true
		}
		if fallback == nil {
			fallback = r
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Rate{}, false
}
