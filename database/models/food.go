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

package models

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrFoodNotFound = errors.New("food not found")

// Hazard level constants for ingredients and derived food hazard levels.
const (
	HazardLevelSafe     = 0
	HazardLevelMild     = 1
	HazardLevelModerate = 2
	HazardLevelHigh     = 3
)

// Food represents a canonical catalog entry. Rows are mutated only by
// committing an approved change proposal, never directly by request
// handlers. Revision advances by exactly one per committed update.
type Food struct {
	ID            uint    `gorm:"primarykey"`
	Name          string  `gorm:"size:255;uniqueIndex;not null"`
	Restaurant    string  `gorm:"size:255;index;not null"`
	ServingSize   uint    `gorm:"not null"` // grams
	MacroTable    []byte  `gorm:"type:jsonb"`
	Ingredients   []byte  `gorm:"type:jsonb"`
	HazardLevel   uint8   `gorm:"not null"` // derived from ingredients
	IsOrganic     bool    `gorm:"not null"`
	IsGlutenFree  bool    `gorm:"not null"`
	IsAlcoholFree bool    `gorm:"not null"`
	IsLactoseFree bool    `gorm:"not null"`
	Revision      uint64  `gorm:"not null"`
	ProposalID    uint    `gorm:"index"` // proposal that created this entry
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time `gorm:"index"` // tombstone
}

// TableName returns the table name
func (Food) TableName() string {
	return "food"
}

// Ingredient is a single entry in a food's ingredient list, carried
// inside the payload document rather than as its own table.
type Ingredient struct {
	Name        string `json:"name"`
	HazardLevel uint8  `json:"hazardLevel"`
}

// FoodPayload is the proposed full replacement state for a food entry.
// It is stored as a JSON document in the blob store, keyed by the
// owning proposal's ID.
type FoodPayload struct {
	Name          string          `json:"name"`
	Restaurant    string          `json:"restaurant"`
	ServingSize   uint            `json:"servingSize"`
	MacroTable    json.RawMessage `json:"macroTable,omitempty"`
	Ingredients   []Ingredient    `json:"ingredients,omitempty"`
	IsOrganic     bool            `json:"isOrganic"`
	IsGlutenFree  bool            `json:"isGlutenFree"`
	IsAlcoholFree bool            `json:"isAlcoholFree"`
	IsLactoseFree bool            `json:"isLactoseFree"`
}

// HazardLevelFromIngredients returns the highest hazard level found in
// the given ingredient list
func HazardLevelFromIngredients(ingredients []Ingredient) uint8 {
	var ret uint8
	for _, ingredient := range ingredients {
		if ingredient.HazardLevel > ret {
			ret = ingredient.HazardLevel
		}
	}
	return ret
}
