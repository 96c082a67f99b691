package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunodmn/pokehub/internal/services"
	"github.com/brunodmn/pokehub/pkg/response"
)

// CacheHandler exposes cache maintenance endpoints.
type CacheHandler struct {
	pokemon *services.PokemonService
}

func NewCacheHandler(pokemon *services.PokemonService) *CacheHandler {
	return &CacheHandler{pokemon: pokemon}
}

// GET /api/cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	response.Success(c, http.StatusOK, h.pokemon.CacheStats())
}

// POST /api/cache/clear
func (h *CacheHandler) Clear(c *gin.Context) {
	h.pokemon.ClearCache()
	response.Success(c, http.StatusOK, gin.H{"message": "cache cleared"})
}
