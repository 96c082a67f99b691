package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/brunodmn/pokehub/internal/services"
	"github.com/brunodmn/pokehub/pkg/response"
)

// Listing page size bounds applied before the upstream call.
const (
	defaultPageLimit = 20
	maxPageLimit     = 1000
)

// PokemonHandler serves the proxied, cached Pokémon read endpoints. Upstream
// payloads are forwarded verbatim; only the by-type listing is reshaped.
type PokemonHandler struct {
	pokemon *services.PokemonService
}

func NewPokemonHandler(pokemon *services.PokemonService) *PokemonHandler {
	return &PokemonHandler{pokemon: pokemon}
}

// GET /api/pokemon
func (h *PokemonHandler) List(c *gin.Context) {
	limit := clampInt(parseIntQuery(c, "limit", defaultPageLimit), 0, maxPageLimit)
	offset := parseIntQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	res, err := h.pokemon.List(requestContext(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, res.Status, res.Body)
}

// GET /api/pokemon/:name
func (h *PokemonHandler) Detail(c *gin.Context) {
	res, err := h.pokemon.Detail(requestContext(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, res.Status, res.Body)
}

// GET /api/type
func (h *PokemonHandler) ListTypes(c *gin.Context) {
	res, err := h.pokemon.ListTypes(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, res.Status, res.Body)
}

// GET /api/type/:name
func (h *PokemonHandler) ListByType(c *gin.Context) {
	res, err := h.pokemon.ListByType(requestContext(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, res.Status, res.Body)
}
