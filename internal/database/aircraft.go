package database

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"skywatcher/internal/models"
)

type AircraftRepository interface {
	InsertBatch(aircraft []*models.Aircraft) error
	IsTablePopulated() (bool, error)
	LoadFromMultipleCSV(csvPaths []string, batchSize int) error
	LookupByICAO(icao string) (*models.Aircraft, error)
}

type aircraftRepository struct {
	db *sql.DB
}

func NewAircraftRepository(db *sql.DB) AircraftRepository {
	return &aircraftRepository{db: db}
}

// InsertBatch inserts or replaces one or more aircraft in a single transaction
func (r *aircraftRepository) InsertBatch(aircraft []*models.Aircraft) error {
	if len(aircraft) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO aircraft (
		icao24, registration, typecode, manufacturer_name, model, operator
	) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ac := range aircraft {
		if _, err := stmt.Exec(
			strings.ToLower(ac.ICAO24), ac.Registration, ac.TypeCode,
			ac.ManufacturerName, ac.Model, ac.Operator,
		); err != nil {
			return fmt.Errorf("failed to insert aircraft: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *aircraftRepository) IsTablePopulated() (bool, error) {
	var ignored int
	err := r.db.QueryRow("SELECT 1 FROM aircraft LIMIT 1").Scan(&ignored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check aircraft table: %w", err)
	}
	return true, nil
}

// LookupByICAO returns the aircraft with the given hex address, or nil when unknown
func (r *aircraftRepository) LookupByICAO(icao string) (*models.Aircraft, error) {
	icao = strings.ToLower(strings.TrimSpace(icao))
	if icao == "" {
		return nil, nil
	}

	ac := &models.Aircraft{}
	err := r.db.QueryRow(`SELECT icao24, registration, typecode, manufacturer_name, model, operator
		FROM aircraft WHERE icao24 = ?`, icao).Scan(
		&ac.ICAO24, &ac.Registration, &ac.TypeCode, &ac.ManufacturerName, &ac.Model, &ac.Operator,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up aircraft %s: %w", icao, err)
	}
	return ac, nil
}

// LoadFromMultipleCSV loads aircraft from one or more CSV exports sharing a header layout.
// Rows with a different field count than the first header, or without icao24, are skipped.
func (r *aircraftRepository) LoadFromMultipleCSV(csvPaths []string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 5000
	}

	var headerMap map[string]int
	var expectedFields int
	batch := make([]*models.Aircraft, 0, batchSize)

	for fileIdx, csvPath := range csvPaths {
		if err := func() error {
			file, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open CSV file %s: %w", csvPath, err)
			}
			defer file.Close()

			reader := csv.NewReader(file)
			reader.LazyQuotes = true
			reader.FieldsPerRecord = -1

			header, err := reader.Read()
			if err != nil {
				return fmt.Errorf("failed to read CSV header from %s: %w", csvPath, err)
			}

			if fileIdx == 0 {
				expectedFields = len(header)
				headerMap = make(map[string]int)
				for i, h := range header {
					headerMap[strings.Trim(strings.TrimSpace(h), "'\"")] = i
				}
			}

			for {
				record, err := reader.Read()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to read CSV record from %s: %w", csvPath, err)
				}

				if len(record) != expectedFields {
					continue
				}

				ac := &models.Aircraft{
					ICAO24:           getField(record, headerMap, "icao24"),
					Registration:     getField(record, headerMap, "registration"),
					TypeCode:         getField(record, headerMap, "typecode"),
					ManufacturerName: getField(record, headerMap, "manufacturerName"),
					Model:            getField(record, headerMap, "model"),
					Operator:         getField(record, headerMap, "operator"),
				}

				if ac.ICAO24 == "" {
					continue
				}

				batch = append(batch, ac)

				if len(batch) >= batchSize {
					if err := r.InsertBatch(batch); err != nil {
						return fmt.Errorf("failed to insert batch: %w", err)
					}
					batch = batch[:0]
				}
			}
		}(); err != nil {
			return err
		}
	}

	if len(batch) > 0 {
		if err := r.InsertBatch(batch); err != nil {
			return fmt.Errorf("failed to insert final batch: %w", err)
		}
	}

	return nil
}

// getField safely retrieves a field from a CSV record by header name
func getField(record []string, headerMap map[string]int, fieldName string) string {
	if idx, ok := headerMap[fieldName]; ok && idx < len(record) {
		return strings.Trim(strings.TrimSpace(record[idx]), "'\"")
	}
	return ""
}
