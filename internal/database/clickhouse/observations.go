package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// PriceObservation represents a single observed Premier price
type PriceObservation struct {
	PartNumber string
	Field      string
	Currency   string
	Price      float64
	ObservedAt time.Time
	Source     string
}

// InventoryObservation represents a single observed warehouse quantity
type InventoryObservation struct {
	PartNumber string
	Warehouse  string
	Quantity   int32
	ObservedAt time.Time
	Source     string
}

// PriceTrend represents daily price aggregates for a part
type PriceTrend struct {
	PartNumber string
	Field      string
	Currency   string
	Date       time.Time
	MinPrice   float64
	MaxPrice   float64
	AvgPrice   float64
	Count      int64
}

// InventoryTrend represents daily inventory aggregates for a part
type InventoryTrend struct {
	PartNumber  string
	Warehouse   string
	Date        time.Time
	MinQuantity int32
	MaxQuantity int32
	Count       int64
}

// InsertPriceObservations inserts price records into ClickHouse
func (c *Client) InsertPriceObservations(ctx context.Context, records []PriceObservation) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (
			part_number, field, currency, price,
			observed_at, observed_date, source
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, r := range records {
		source := r.Source
		if source == "" {
			source = "premier"
		}

		observedDate := r.ObservedAt.Truncate(24 * time.Hour)

		err := batch.Append(
			r.PartNumber,
			r.Field,
			r.Currency,
			r.Price,
			r.ObservedAt,
			observedDate,
			source,
		)
		if err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}

// InsertInventoryObservations inserts inventory records into ClickHouse
func (c *Client) InsertInventoryObservations(ctx context.Context, records []InventoryObservation) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO inventory_observations (
			part_number, warehouse, quantity,
			observed_at, observed_date, source
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, r := range records {
		source := r.Source
		if source == "" {
			source = "premier"
		}

		observedDate := r.ObservedAt.Truncate(24 * time.Hour)

		err := batch.Append(
			r.PartNumber,
			r.Warehouse,
			r.Quantity,
			r.ObservedAt,
			observedDate,
			source,
		)
		if err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}

// RecordPricingUpdate converts a parsed Premier pricing update into
// observations. Keys follow the field_currency convention, for example
// cost_cad or msrp_usd.
func RecordPricingUpdate(partNumber string, update map[string]float64, observedAt time.Time) []PriceObservation {
	records := make([]PriceObservation, 0, len(update))
	for key, price := range update {
		field, currency, ok := splitPricingKey(key)
		if !ok {
			continue
		}
		records = append(records, PriceObservation{
			PartNumber: partNumber,
			Field:      field,
			Currency:   currency,
			Price:      price,
			ObservedAt: observedAt,
		})
	}
	return records
}

// RecordInventoryUpdate converts a parsed Premier inventory update into
// observations. Keys follow the inventory_xx convention where xx is the
// warehouse code.
func RecordInventoryUpdate(partNumber string, update map[string]int, observedAt time.Time) []InventoryObservation {
	records := make([]InventoryObservation, 0, len(update))
	for key, quantity := range update {
		warehouse, ok := splitInventoryKey(key)
		if !ok {
			continue
		}
		records = append(records, InventoryObservation{
			PartNumber: partNumber,
			Warehouse:  warehouse,
			Quantity:   int32(quantity),
			ObservedAt: observedAt,
		})
	}
	return records
}

func splitPricingKey(key string) (field, currency string, ok bool) {
	for i := len(key) - 1; i > 0; i-- {
		if key[i] == '_' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}

func splitInventoryKey(key string) (warehouse string, ok bool) {
	const prefix = "inventory_"
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return "", false
	}
	return key[len(prefix):], true
}

// GetPriceTrends returns daily price aggregates for a part over time
func (c *Client) GetPriceTrends(ctx context.Context, partNumber string, days int) ([]PriceTrend, error) {
	since := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT
			part_number,
			field,
			currency,
			toDate(observed_at) as date,
			min(price) as min_price,
			max(price) as max_price,
			avg(price) as avg_price,
			count() as count
		FROM price_observations
		WHERE part_number = ?
		  AND observed_at >= ?
		GROUP BY part_number, field, currency, date
		ORDER BY date, field, currency
	`

	rows, err := c.conn.Query(ctx, query, partNumber, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	var trends []PriceTrend
	for rows.Next() {
		var t PriceTrend
		if err := rows.Scan(&t.PartNumber, &t.Field, &t.Currency, &t.Date, &t.MinPrice, &t.MaxPrice, &t.AvgPrice, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		trends = append(trends, t)
	}

	return trends, rows.Err()
}

// GetInventoryTrends returns daily inventory aggregates for a part over time
func (c *Client) GetInventoryTrends(ctx context.Context, partNumber string, days int) ([]InventoryTrend, error) {
	since := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT
			part_number,
			warehouse,
			toDate(observed_at) as date,
			min(quantity) as min_quantity,
			max(quantity) as max_quantity,
			count() as count
		FROM inventory_observations
		WHERE part_number = ?
		  AND observed_at >= ?
		GROUP BY part_number, warehouse, date
		ORDER BY date, warehouse
	`

	rows, err := c.conn.Query(ctx, query, partNumber, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	var trends []InventoryTrend
	for rows.Next() {
		var t InventoryTrend
		if err := rows.Scan(&t.PartNumber, &t.Warehouse, &t.Date, &t.MinQuantity, &t.MaxQuantity, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		trends = append(trends, t)
	}

	return trends, rows.Err()
}

// GetLatestPrices returns the most recent observed price per field and
// currency for a part
func (c *Client) GetLatestPrices(ctx context.Context, partNumber string) (map[string]float64, error) {
	query := `
		SELECT
			concat(field, '_', currency) as key,
			argMax(price, observed_at) as latest_price
		FROM price_observations
		WHERE part_number = ?
		GROUP BY key
	`

	rows, err := c.conn.Query(ctx, query, partNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64)
	for rows.Next() {
		var key string
		var price float64
		if err := rows.Scan(&key, &price); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		prices[key] = price
	}

	return prices, rows.Err()
}

// GetObservationCounts returns the total number of price and inventory
// observations
func (c *Client) GetObservationCounts(ctx context.Context) (prices uint64, inventories uint64, err error) {
	if err := c.conn.QueryRow(ctx, "SELECT count() FROM price_observations").Scan(&prices); err != nil {
		return 0, 0, fmt.Errorf("failed to count price observations: %w", err)
	}
	if err := c.conn.QueryRow(ctx, "SELECT count() FROM inventory_observations").Scan(&inventories); err != nil {
		return 0, 0, fmt.Errorf("failed to count inventory observations: %w", err)
	}
	return prices, inventories, nil
}
