package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"homeyield/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// GetAllProperties loads the full property catalog. Rows are returned in
// zpid order so catalog snapshots have a stable natural order.
func (d *Database) GetAllProperties() ([]models.Property, error) {
	query := `
        SELECT
            zpid,
            COALESCE(image_url, '') as image_url,
            COALESCE(street_address, '') as street_address,
            COALESCE(city, '') as city,
            COALESCE(zip_code, '') as zip_code,
            COALESCE(home_type, '') as home_type,
            purchase_price,
            monthly_restimate,
            year_built,
            bedrooms,
            bathrooms,
            living_area,
            lot_size,
            annual_property_tax_rate,
            annual_mortgage_rate,
            monthly_homeowners_insurance,
            monthly_hoa,
            is_waterfront,
            home_features_score,
            gross_rent_multiplier
        FROM properties
        ORDER BY zpid
    `
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		var purchasePrice, monthlyRestimate, bedrooms, bathrooms sql.NullFloat64
		var taxRate, mortgageRate, insurance, hoa sql.NullFloat64
		var livingArea, lotSize, featuresScore, grossRentMultiplier sql.NullFloat64
		var yearBuilt sql.NullInt64
		var isWaterfront sql.NullBool

		err := rows.Scan(
			&p.ZPID,
			&p.ImageURL,
			&p.StreetAddress,
			&p.City,
			&p.ZipCode,
			&p.HomeType,
			&purchasePrice,
			&monthlyRestimate,
			&yearBuilt,
			&bedrooms,
			&bathrooms,
			&livingArea,
			&lotSize,
			&taxRate,
			&mortgageRate,
			&insurance,
			&hoa,
			&isWaterfront,
			&featuresScore,
			&grossRentMultiplier,
		)
		if err != nil {
			return nil, err
		}

		// Handle nullable numeric fields
		if purchasePrice.Valid {
			p.PurchasePrice = purchasePrice.Float64
		}
		if monthlyRestimate.Valid {
			p.MonthlyRestimate = monthlyRestimate.Float64
		}
		if yearBuilt.Valid {
			p.YearBuilt = int(yearBuilt.Int64)
		}
		if bedrooms.Valid {
			p.Bedrooms = bedrooms.Float64
		}
		if bathrooms.Valid {
			p.Bathrooms = bathrooms.Float64
		}
		if taxRate.Valid {
			p.AnnualPropertyTaxRate = taxRate.Float64
		}
		if mortgageRate.Valid {
			p.AnnualMortgageRate = mortgageRate.Float64
		}
		if insurance.Valid {
			p.MonthlyHomeownersInsurance = insurance.Float64
		}
		if hoa.Valid {
			p.MonthlyHOA = hoa.Float64
		}
		if isWaterfront.Valid {
			p.IsWaterfront = isWaterfront.Bool
		}

		// Optional display fields stay nil when absent
		if livingArea.Valid {
			la := livingArea.Float64
			p.LivingArea = &la
		}
		if lotSize.Valid {
			ls := lotSize.Float64
			p.LotSize = &ls
		}
		if featuresScore.Valid {
			fs := featuresScore.Float64
			p.HomeFeaturesScore = &fs
		}
		if grossRentMultiplier.Valid {
			grm := grossRentMultiplier.Float64
			p.GrossRentMultiplier = &grm
		}

		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %v", err)
	}
	return properties, nil
}

// GetValuationHistory loads every historical valuation observation, ordered
// by property and date.
func (d *Database) GetValuationHistory() ([]models.ValuationObservation, error) {
	rows, err := d.db.Query(`
		SELECT zpid, date, price
		FROM valuation_history
		WHERE price IS NOT NULL
		ORDER BY zpid, date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation history: %v", err)
	}
	defer rows.Close()

	var observations []models.ValuationObservation
	for rows.Next() {
		var obs models.ValuationObservation
		var dateStr string
		if err := rows.Scan(&obs.ZPID, &dateStr, &obs.Price); err != nil {
			return nil, fmt.Errorf("failed to scan valuation row: %v", err)
		}
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			obs.Date = t
		} else if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
			obs.Date = t
		} else {
			continue
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuation history: %v", err)
	}
	return observations, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}
