package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Item represents one catalog entry extracted from a build guide
type Item struct {
	ID       string                 `json:"id"`
	GameID   string                 `json:"game_id"`
	SheetID  string                 `json:"sheet_id"`
	Name     string                 `json:"name"`
	ImageID  string                 `json:"image_id"`
	Icon     string                 `json:"icon"`
	Category string                 `json:"category"` // Label style: unique, legendary
	Data     map[string]interface{} `json:"data"`
}

// ItemList is a collection of items
type ItemList struct {
	Items      []Item `json:"items"`
	TotalCount int    `json:"total_count"`
}

// StableItemID derives an item ID that survives re-imports of the same name
func StableItemID(gameID, sheetID, name string) string {
	input := fmt.Sprintf("%s:%s:%s", gameID, sheetID, name)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(input)).String()
}
