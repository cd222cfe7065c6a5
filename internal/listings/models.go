package listings

import "time"

type Material string

const (
	MaterialLeather     Material = "leather"
	MaterialPlastic     Material = "plastic"
	MaterialFabric      Material = "fabric"
	MaterialAluminum    Material = "aluminum"
	MaterialCarbonFiber Material = "carbon-fiber"
)

func (m Material) Valid() bool {
	switch m {
	case MaterialLeather, MaterialPlastic, MaterialFabric, MaterialAluminum, MaterialCarbonFiber:
		return true
	}
	return false
}

type Listing struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	HeightCM    int       `json:"height"`
	WidthCM     int       `json:"width"`
	DepthCM     *int      `json:"depth,omitempty"`
	Material    Material  `json:"material"`
	Color       string    `json:"color,omitempty"`
	Features    []string  `json:"features"`
	Rate        float64   `json:"rate"`
	Stock       int       `json:"stock"`
	IsSold      bool      `json:"is_sold"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingUpdate carries the patchable fields. Stock and is_sold are absent:
// that pair is only ever written through the ledger operations.
type ListingUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Rate        *float64
}

// RateAdjustment selects exactly one bulk-rate policy.
type RateAdjustment struct {
	Delta   *float64 // add the same amount to every matching listing
	Percent *float64 // multiply by (1 + pct/100), rounded to 2 decimals
}
