package model

type Metal string

const (
	MetalGold   Metal = "gold"
	MetalSilver Metal = "silver"
)

// Item is one entry in a seller's inventory. Premiums are rupees over the
// live base rate, quoted separately for the buy and sell directions.
type Item struct {
	ID          string  `json:"id"`
	SellerID    string  `json:"sellerId"`
	SellerName  string  `json:"sellerName,omitempty"`
	Name        string  `json:"name"`
	Metal       Metal   `json:"metal"`
	Purity      string  `json:"purity,omitempty"`
	WeightGrams float64 `json:"weightGrams"`
	BuyPremium  float64 `json:"buyPremium"`
	SellPremium float64 `json:"sellPremium"`
	InStock     bool    `json:"inStock"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	CreatedAt   Millis  `json:"createdAt,omitempty"`
	UpdatedAt   Millis  `json:"updatedAt,omitempty"`
}

// Premium returns the premium for the given request direction.
func (i *Item) Premium(t RequestType) float64 {
	if t == RequestTypeSell {
		return i.SellPremium
	}
	return i.BuyPremium
}
