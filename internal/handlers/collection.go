package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunodmn/pokehub/internal/services"
	"github.com/brunodmn/pokehub/pkg/response"
)

// CollectionHandler serves the caller's favorites and battle team.
type CollectionHandler struct {
	collections *services.CollectionService
}

func NewCollectionHandler(collections *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

type memberRequest struct {
	Code         string  `json:"code" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=120"`
	TypeID       *string `json:"type_id"`
	ImageURL     *string `json:"image_url"`
	IsTeamMember bool    `json:"is_team_member"`
	IsFavorite   bool    `json:"is_favorite"`
}

func (r memberRequest) toInput() services.MemberInput {
	return services.MemberInput{
		Code:         r.Code,
		Name:         r.Name,
		TypeID:       r.TypeID,
		ImageURL:     r.ImageURL,
		IsTeamMember: r.IsTeamMember,
		IsFavorite:   r.IsFavorite,
	}
}

// GET /api/me/team
func (h *CollectionHandler) ListTeam(c *gin.Context) {
	team, err := h.collections.ListTeam(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// POST /api/me/team
func (h *CollectionHandler) AddTeamMember(c *gin.Context) {
	var req memberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.collections.AddTeamMember(requestContext(c), currentUserID(c), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, member)
}

// DELETE /api/me/team/:id
func (h *CollectionHandler) RemoveTeamMember(c *gin.Context) {
	if err := h.collections.RemoveTeamMember(requestContext(c), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "team member removed"})
}

// GET /api/me/favorites
func (h *CollectionHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.collections.ListFavorites(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, favorites)
}

// POST /api/me/favorites
func (h *CollectionHandler) AddFavorite(c *gin.Context) {
	var req memberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.collections.AddFavorite(requestContext(c), currentUserID(c), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, member)
}

// DELETE /api/me/favorites/:id
func (h *CollectionHandler) RemoveFavorite(c *gin.Context) {
	if err := h.collections.RemoveFavorite(requestContext(c), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "favorite removed"})
}
