package models

import "time"

// Property is one row of the static listing catalog. The catalog is loaded
// once at startup and is read-only for the lifetime of the process; ZPID
// uniquely identifies a row.
type Property struct {
	ZPID                       int64    `json:"zpid" gorm:"primaryKey;column:zpid"`
	ImageURL                   string   `json:"image_url" gorm:"column:image_url"`
	StreetAddress              string   `json:"street_address" gorm:"column:street_address"`
	City                       string   `json:"city" gorm:"column:city"`
	ZipCode                    string   `json:"zip_code" gorm:"column:zip_code"`
	HomeType                   string   `json:"home_type" gorm:"column:home_type"`
	PurchasePrice              float64  `json:"purchase_price" gorm:"column:purchase_price"`
	MonthlyRestimate           float64  `json:"monthly_restimate" gorm:"column:monthly_restimate"`
	YearBuilt                  int      `json:"year_built" gorm:"column:year_built"`
	Bedrooms                   float64  `json:"bedrooms" gorm:"column:bedrooms"`
	Bathrooms                  float64  `json:"bathrooms" gorm:"column:bathrooms"`
	LivingArea                 *float64 `json:"living_area" gorm:"column:living_area"`
	LotSize                    *float64 `json:"lot_size" gorm:"column:lot_size"`
	AnnualPropertyTaxRate      float64  `json:"annual_property_tax_rate" gorm:"column:annual_property_tax_rate"`
	AnnualMortgageRate         float64  `json:"annual_mortgage_rate" gorm:"column:annual_mortgage_rate"`
	MonthlyHomeownersInsurance float64  `json:"monthly_homeowners_insurance" gorm:"column:monthly_homeowners_insurance"`
	MonthlyHOA                 float64  `json:"monthly_hoa" gorm:"column:monthly_hoa"`
	IsWaterfront               bool     `json:"is_waterfront" gorm:"column:is_waterfront"`
	HomeFeaturesScore          *float64 `json:"home_features_score" gorm:"column:home_features_score"`
	GrossRentMultiplier        *float64 `json:"gross_rent_multiplier" gorm:"column:gross_rent_multiplier"`
}

func (Property) TableName() string {
	return "properties"
}

// ValuationObservation is a single point of a property's historical
// valuation series. Series are sparse and of variable length; not every
// catalog property has one.
type ValuationObservation struct {
	ZPID  int64     `json:"zpid" gorm:"primaryKey;column:zpid"`
	Date  time.Time `json:"date" gorm:"primaryKey;column:date"`
	Price float64   `json:"price" gorm:"column:price"`
}

func (ValuationObservation) TableName() string {
	return "valuation_history"
}
