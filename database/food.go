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

package database

import (
	"time"

	"github.com/openplate/pantry/database/models"
)

// NewFood inserts a new canonical food entry
func (d *Database) NewFood(
	food *models.Food,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Release()
		if err := d.NewFood(food, txn); err != nil {
			return err
		}
		return txn.Commit()
	}
	return storeError(d.metadata.NewFood(food, txn.Metadata()))
}

// GetFood returns a food entry by ID. Tombstoned entries are excluded
// unless includeDeleted is set.
func (d *Database) GetFood(
	foodId uint,
	includeDeleted bool,
	txn *Txn,
) (*models.Food, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret, err := d.metadata.GetFood(foodId, includeDeleted, txn.Metadata())
	if err != nil {
		return nil, storeError(err)
	}
	if ret == nil {
		return nil, models.ErrFoodNotFound
	}
	return ret, nil
}

// GetFoodByName returns a live food entry by its unique name
func (d *Database) GetFoodByName(
	name string,
	txn *Txn,
) (*models.Food, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret, err := d.metadata.GetFoodByName(name, txn.Metadata())
	if err != nil {
		return nil, storeError(err)
	}
	if ret == nil {
		return nil, models.ErrFoodNotFound
	}
	return ret, nil
}

// UpdateFood replaces a food entry's mutable fields
func (d *Database) UpdateFood(
	food *models.Food,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Release()
		if err := d.UpdateFood(food, txn); err != nil {
			return err
		}
		return txn.Commit()
	}
	return storeError(d.metadata.UpdateFood(food, txn.Metadata()))
}

// TombstoneFood soft-deletes a food entry
func (d *Database) TombstoneFood(
	foodId uint,
	at time.Time,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Release()
		if err := d.TombstoneFood(foodId, at, txn); err != nil {
			return err
		}
		return txn.Commit()
	}
	return storeError(d.metadata.TombstoneFood(foodId, at, txn.Metadata()))
}
