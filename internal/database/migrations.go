package database

func (d *Database) RunMigrations() error {
	// Create the listings table
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT UNIQUE NOT NULL,
			title TEXT,
			street TEXT,
			neighborhood TEXT,
			property_type TEXT,
			city TEXT,
			postal_code TEXT,
			monthly_rent INTEGER,
			bedrooms INTEGER,
			bathrooms INTEGER,
			living_area INTEGER,
			status TEXT DEFAULT 'active',
			listed_at DATE,
			scraped_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Add latitude and longitude columns if they don't exist
	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN latitude REAL;
	`)
	if err != nil && err.Error() != "duplicate column name: latitude" {
		return err
	}

	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN longitude REAL;
	`)
	if err != nil && err.Error() != "duplicate column name: longitude" {
		return err
	}

	// Add geocoding_attempted column
	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN geocoding_attempted BOOLEAN DEFAULT 0;
	`)
	if err != nil && err.Error() != "duplicate column name: geocoding_attempted" {
		return err
	}

	// Mark properties that already have coordinates as attempted
	_, err = d.db.Exec(`
		UPDATE properties
		SET geocoding_attempted = 1
		WHERE latitude IS NOT NULL
		AND longitude IS NOT NULL;
	`)
	if err != nil {
		return err
	}

	// Create spatial index on coordinates
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	return nil
}
