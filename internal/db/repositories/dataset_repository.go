package repositories

import (
	"context"
	"fmt"

	"airtraffic/statboard/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

const insertBatchSize = 100

// DatasetRepository writes the source tables. Only the seed path uses it;
// the analytics path is read-only.
type DatasetRepository struct {
	db *gormlib.DB
}

func NewDatasetRepository(db *gormlib.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// ReplaceAll deletes every dataset row and inserts ds in one transaction.
func (r *DatasetRepository) ReplaceAll(ctx context.Context, ds *gorm.Dataset) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		// Children first.
		for _, model := range []interface{}{
			&gorm.TotalFlow{},
			&gorm.InternationalFlow{},
			&gorm.DomesticFlow{},
			&gorm.Airport{},
			&gorm.State{},
			&gorm.City{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}

		if err := batchInsert(tx, ds.Cities); err != nil {
			return fmt.Errorf("failed to insert cities: %w", err)
		}
		if err := batchInsert(tx, ds.States); err != nil {
			return fmt.Errorf("failed to insert states: %w", err)
		}
		if err := batchInsert(tx, ds.Airports); err != nil {
			return fmt.Errorf("failed to insert airports: %w", err)
		}
		if err := batchInsert(tx, ds.Domestic); err != nil {
			return fmt.Errorf("failed to insert domestic rows: %w", err)
		}
		if err := batchInsert(tx, ds.International); err != nil {
			return fmt.Errorf("failed to insert international rows: %w", err)
		}
		if err := batchInsert(tx, ds.Total); err != nil {
			return fmt.Errorf("failed to insert total rows: %w", err)
		}
		return nil
	})
}

func batchInsert[T any](tx *gormlib.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, insertBatchSize).Error
}

// Counts returns the row count of each dataset table.
func (r *DatasetRepository) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, model := range gorm.AllModels() {
		table := model.(interface{ TableName() string }).TableName()
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		out[table] = count
	}
	return out, nil
}
