package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rentradar/server/internal/geocoding"
	"rentradar/server/internal/models"
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

func (d *Database) GetAllProperties(filter models.PropertyFilter) ([]models.Property, error) {
	query := `
        SELECT
            id,
            url,
            title,
            street,
            neighborhood,
            property_type,
            city,
            postal_code,
            monthly_rent,
            bedrooms,
            bathrooms,
            living_area,
            status,
            COALESCE(listed_at, '') as listed_at,
            COALESCE(scraped_at, CURRENT_TIMESTAMP) as scraped_at,
            COALESCE(created_at, CURRENT_TIMESTAMP) as created_at,
            latitude,
            longitude
        FROM properties
        WHERE status = 'active'
        AND (? = '' OR LOWER(city) = LOWER(?))
        AND (? = 0 OR monthly_rent >= ?)
        AND (? = 0 OR monthly_rent <= ?)
        AND (? = 0 OR bedrooms >= ?)
        ORDER BY listed_at DESC
    `
	var args []interface{}
	args = append(args,
		filter.City, filter.City, // For city filter
		filter.MinRent, filter.MinRent, // Rent floor
		filter.MaxRent, filter.MaxRent, // Rent ceiling
		filter.Bedrooms, filter.Bedrooms, // Minimum bedrooms
	)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

// GetPropertiesByIDs returns the requested properties in the order the IDs
// were given, so comparison color assignment stays stable.
func (d *Database) GetPropertiesByIDs(ids []int64) ([]models.Property, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`
        SELECT
            id, url, title, street, neighborhood, property_type, city, postal_code,
            monthly_rent, bedrooms, bathrooms, living_area, status,
            COALESCE(listed_at, '') as listed_at,
            COALESCE(scraped_at, CURRENT_TIMESTAMP) as scraped_at,
            COALESCE(created_at, CURRENT_TIMESTAMP) as created_at,
            latitude, longitude
        FROM properties
        WHERE id IN (%s)
    `, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties, err := scanProperties(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}

	ordered := make([]models.Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func scanProperties(rows *sql.Rows) ([]models.Property, error) {
	var properties []models.Property
	for rows.Next() {
		var p models.Property
		var title, street, neighborhood, propertyType, city, postalCode, status sql.NullString
		var listedAt, scrapedAt, createdAt sql.NullString
		var bedrooms, bathrooms, livingArea sql.NullInt64
		var monthlyRent sql.NullInt64
		var latitude, longitude sql.NullFloat64

		err := rows.Scan(
			&p.ID,
			&p.URL,
			&title,
			&street,
			&neighborhood,
			&propertyType,
			&city,
			&postalCode,
			&monthlyRent,
			&bedrooms,
			&bathrooms,
			&livingArea,
			&status,
			&listedAt,
			&scrapedAt,
			&createdAt,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, err
		}

		// Handle nullable string fields
		if title.Valid {
			p.Title = title.String
		}
		if street.Valid {
			p.Street = street.String
		}
		if neighborhood.Valid {
			p.Neighborhood = neighborhood.String
		}
		if propertyType.Valid {
			p.PropertyType = propertyType.String
		}
		if city.Valid {
			p.City = city.String
		}
		if postalCode.Valid {
			p.PostalCode = postalCode.String
		}
		if status.Valid {
			p.Status = status.String
		}

		// Handle nullable numeric fields
		if monthlyRent.Valid {
			p.MonthlyRent = int(monthlyRent.Int64)
		}
		if bedrooms.Valid {
			b := int(bedrooms.Int64)
			p.Bedrooms = &b
		}
		if bathrooms.Valid {
			b := int(bathrooms.Int64)
			p.Bathrooms = &b
		}
		if livingArea.Valid {
			la := int(livingArea.Int64)
			p.LivingArea = &la
		}

		// Handle nullable coordinates
		if latitude.Valid {
			lat := latitude.Float64
			p.Latitude = &lat
		}
		if longitude.Valid {
			lon := longitude.Float64
			p.Longitude = &lon
		}

		// Parse dates if they're valid
		if listedAt.Valid && listedAt.String != "" {
			if t, err := time.Parse("2006-01-02", listedAt.String); err == nil {
				p.ListedAt = t
			}
		}
		if scrapedAt.Valid && scrapedAt.String != "" {
			if t, err := time.Parse(time.RFC3339, scrapedAt.String); err == nil {
				p.ScrapedAt = t
			}
		}
		if createdAt.Valid && createdAt.String != "" {
			if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				p.CreatedAt = t
			}
		}

		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) UpdateMissingCoordinates(geocoder *geocoding.Geocoder) error {
	// Get total count of properties needing geocoding
	var totalCount int
	err := d.db.QueryRow(`
		SELECT COUNT(*)
		FROM properties
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
		AND street IS NOT NULL
		AND postal_code IS NOT NULL
		AND city IS NOT NULL
	`).Scan(&totalCount)
	if err != nil {
		return fmt.Errorf("failed to count properties: %v", err)
	}

	if totalCount == 0 {
		fmt.Println("No properties need geocoding")
		return nil
	}

	fmt.Printf("Found %d properties that need geocoding\n", totalCount)

	var processed, failed int
	batchSize := 10

	// Process properties in batches
	for processed+failed < totalCount {
		// Start a new transaction for each batch
		tx, err := d.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %v", err)
		}

		rows, err := tx.Query(`
			SELECT id, street, postal_code, city
			FROM properties
			WHERE (latitude IS NULL OR longitude IS NULL)
			AND geocoding_attempted = 0
			AND street IS NOT NULL
			AND postal_code IS NOT NULL
			AND city IS NOT NULL
			LIMIT ?
		`, batchSize)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to query properties: %v", err)
		}

		stmt, err := tx.Prepare(`
			UPDATE properties
			SET latitude = ?, longitude = ?, geocoding_attempted = 1
			WHERE id = ?
		`)
		if err != nil {
			rows.Close()
			tx.Rollback()
			return fmt.Errorf("failed to prepare statement: %v", err)
		}

		failedStmt, err := tx.Prepare(`
			UPDATE properties
			SET geocoding_attempted = 1
			WHERE id = ?
		`)
		if err != nil {
			rows.Close()
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to prepare failed statement: %v", err)
		}

		var batchProcessed int
		for rows.Next() {
			var id int64
			var street, postalCode, city string
			if err := rows.Scan(&id, &street, &postalCode, &city); err != nil {
				rows.Close()
				stmt.Close()
				failedStmt.Close()
				tx.Rollback()
				return fmt.Errorf("failed to scan row: %v", err)
			}

			lat, lon, err := geocoder.GeocodeAddress(street, postalCode, city)
			if err != nil {
				fmt.Printf("Failed to geocode %s, %s, %s: %v\n", street, postalCode, city, err)
				// Mark as attempted even if geocoding failed
				_, err = failedStmt.Exec(id)
				if err != nil {
					rows.Close()
					stmt.Close()
					failedStmt.Close()
					tx.Rollback()
					return fmt.Errorf("failed to mark geocoding attempt: %v", err)
				}
				failed++
				batchProcessed++
				continue
			}

			_, err = stmt.Exec(lat, lon, id)
			if err != nil {
				rows.Close()
				stmt.Close()
				failedStmt.Close()
				tx.Rollback()
				return fmt.Errorf("failed to update coordinates: %v", err)
			}

			processed++
			batchProcessed++

			// Print progress
			fmt.Printf("Progress: %d/%d properties processed (%.1f%%), %d failed\n",
				processed+failed, totalCount, float64(processed+failed)/float64(totalCount)*100, failed)
		}

		rows.Close()
		stmt.Close()
		failedStmt.Close()

		// Commit the batch
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %v", err)
		}

		// If we didn't process any items in this batch, something might be wrong
		if batchProcessed == 0 {
			return fmt.Errorf("no properties processed in batch, possible data inconsistency. Total processed: %d/%d",
				processed+failed, totalCount)
		}
	}

	// Log final stats
	fmt.Printf("Geocoding completed: %d/%d properties processed (%.1f%%), %d failed\n",
		processed+failed, totalCount, float64(processed+failed)/float64(totalCount)*100, failed)

	return nil
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}
