package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meur/gearforge/internal/catalog"
	"github.com/meur/gearforge/internal/logger"
	"github.com/meur/gearforge/internal/models"
	"github.com/meur/gearforge/internal/storage"
)

// handleGetGames returns all available games
func (s *Server) handleGetGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.GetGames()
	if err != nil {
		s.log.Error("Failed to fetch games", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch games")
		return
	}
	respondJSON(w, http.StatusOK, games)
}

// handleGetGame returns a single game by ID
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, ok := s.loadGame(w, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, game)
}

// handleGetItems returns items for a game
func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	sheetID := r.URL.Query().Get("sheet")

	items, err := s.store.GetItems(gameID, sheetID)
	if err != nil {
		s.log.Error("Failed to fetch items", logger.String("game_id", gameID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch items")
		return
	}

	respondJSON(w, http.StatusOK, models.ItemList{
		Items:      items,
		TotalCount: len(items),
	})
}

// handleGetSheets returns available sheets for a game
func (s *Server) handleGetSheets(w http.ResponseWriter, r *http.Request) {
	game, ok := s.loadGame(w, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, game.Sheets)
}

// handleLookup resolves an item name to its image, exact match first
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	sheetID := r.URL.Query().Get("sheet")
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, ok := s.loadGame(w, gameID); !ok {
		return
	}

	item, err := s.store.GetItemByName(gameID, sheetID, name)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, catalog.Match{
			Name:     item.Name,
			ImageID:  item.ImageID,
			ImageURL: catalog.ImageURL(item.ImageID),
			Exact:    true,
		})
		return
	case !errors.Is(err, storage.ErrNotFound):
		s.log.Error("Failed to look up item", logger.String("name", name), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to look up item")
		return
	}

	ids, err := s.store.ItemImageIDs(gameID, sheetID)
	if err != nil {
		s.log.Error("Failed to fetch items", logger.String("game_id", gameID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to look up item")
		return
	}

	match, ok := catalog.Lookup(ids, name)
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error":     "Item not found",
			"image_url": catalog.FallbackImageURL,
		})
		return
	}
	respondJSON(w, http.StatusOK, match)
}

func (s *Server) loadGame(w http.ResponseWriter, gameID string) (*models.Game, bool) {
	game, err := s.store.GetGame(gameID)
	if err != nil {
		s.log.Error("Failed to fetch game", logger.String("game_id", gameID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch game")
		return nil, false
	}
	if game == nil {
		respondError(w, http.StatusNotFound, "Game not found")
		return nil, false
	}
	return game, true
}
