// Copyright 2025 OpenPlate Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlite

import (
	"errors"
	"fmt"
	"time"

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/database/types"
	"gorm.io/gorm"
)

// NewFood inserts a new canonical food entry.
func (d *MetadataStoreSqlite) NewFood(
	food *models.Food,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(food); result.Error != nil {
		return fmt.Errorf("NewFood: insert: %w", result.Error)
	}
	return nil
}

// GetFood retrieves a food entry by ID. Tombstoned entries are excluded
// unless includeDeleted is set. Returns nil if not found.
func (d *MetadataStoreSqlite) GetFood(
	foodId uint,
	includeDeleted bool,
	txn types.Txn,
) (*models.Food, error) {
	var ret models.Food
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Where("id = ?", foodId)
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	result := query.First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetFood: query: %w", result.Error)
	}
	return &ret, nil
}

// GetFoodByName retrieves a live food entry by its unique name, or nil
// if not found.
func (d *MetadataStoreSqlite) GetFoodByName(
	name string,
	txn types.Txn,
) (*models.Food, error) {
	var ret models.Food
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Where(
		"name = ? AND deleted_at IS NULL",
		name,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetFoodByName: query: %w", result.Error)
	}
	return &ret, nil
}

// UpdateFood replaces a food entry's mutable fields.
func (d *MetadataStoreSqlite) UpdateFood(
	food *models.Food,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Save(food); result.Error != nil {
		return fmt.Errorf("UpdateFood: update: %w", result.Error)
	}
	return nil
}

// TombstoneFood soft-deletes a food entry. The row is kept so committed
// delete proposals retain their target reference.
func (d *MetadataStoreSqlite) TombstoneFood(
	foodId uint,
	at time.Time,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Food{}).
		Where("id = ? AND deleted_at IS NULL", foodId).
		Update("deleted_at", at)
	if result.Error != nil {
		return fmt.Errorf("TombstoneFood: update: %w", result.Error)
	}
	return nil
}
