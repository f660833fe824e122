package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Create the property catalog table
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			zpid INTEGER PRIMARY KEY,
			image_url TEXT,
			street_address TEXT,
			city TEXT,
			zip_code TEXT,
			home_type TEXT,
			purchase_price REAL,
			monthly_restimate REAL,
			year_built INTEGER,
			bedrooms REAL,
			bathrooms REAL,
			living_area REAL,
			lot_size REAL,
			annual_property_tax_rate REAL,
			annual_mortgage_rate REAL,
			monthly_homeowners_insurance REAL,
			monthly_hoa REAL,
			is_waterfront BOOLEAN DEFAULT 0,
			home_features_score REAL,
			gross_rent_multiplier REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %v", err)
	}

	// Create the valuation history table
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS valuation_history (
			zpid INTEGER NOT NULL,
			date TEXT NOT NULL,
			price REAL,
			PRIMARY KEY (zpid, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create valuation_history table: %v", err)
	}

	// Index for per-property series loads
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_valuation_history_zpid
		ON valuation_history(zpid);
	`)
	if err != nil {
		return err
	}

	// Index for the common city and zip filters
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_city_zip
		ON properties(city, zip_code);
	`)
	if err != nil {
		return err
	}

	return nil
}
