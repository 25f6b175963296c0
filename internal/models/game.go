package models

import (
	"time"
)

// Game represents a game whose items are catalogued
type Game struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IconURL     string        `json:"icon_url"`
	Sheets      []SheetConfig `json:"sheets"`
	CreatedAt   time.Time     `json:"created_at"`
}

// SheetConfig defines a sheet (item group) within a game
type SheetConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DiabloIV returns the game record items are imported under
func DiabloIV(id, sheetID string) *Game {
	return &Game{
		ID:          id,
		Name:        "Diablo IV",
		Description: "Unique and legendary items from Maxroll build guides",
		IconURL:     "https://assets-ng.maxroll.gg/wordpress/Maxroll_Media_Uniques.webp",
		Sheets: []SheetConfig{
			{
				ID:          sheetID,
				Name:        "Items",
				Description: "Unique and legendary items",
			},
		},
	}
}
