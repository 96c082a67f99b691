package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/brunodmn/pokehub/internal/auth"
	"github.com/brunodmn/pokehub/internal/handlers"
	"github.com/brunodmn/pokehub/internal/middleware"
	"github.com/brunodmn/pokehub/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, pokemon *services.PokemonService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if pokemon == nil {
		return nil, fmt.Errorf("pokemon service must be provided")
	}

	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	collections, err := services.NewCollectionService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	r.NoRoute(middleware.NotFoundHandler)

	// Public endpoints
	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(jwt)
	optionalAuth := middleware.OptionalAuth(jwt)
	requireAdmin := middleware.RequireAdmin(users)

	authHandler := handlers.NewAuthHandler(users, jwt)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.GET("/me", requireAuth, authHandler.Me)
		auth.GET("/users", requireAuth, requireAdmin, authHandler.ListUsers)
		auth.DELETE("/users/:id", requireAuth, requireAdmin, authHandler.DeleteUser)
	}

	pokemonHandler := handlers.NewPokemonHandler(pokemon)

	// Proxied read endpoints work anonymously; identity is attached when a
	// valid token happens to be present.
	proxied := r.Group("/api", optionalAuth)
	{
		proxied.GET("/pokemon", pokemonHandler.List)
		proxied.GET("/pokemon/:name", pokemonHandler.Detail)
		proxied.GET("/type", pokemonHandler.ListTypes)
		proxied.GET("/type/:name", pokemonHandler.ListByType)
	}

	cacheHandler := handlers.NewCacheHandler(pokemon)

	cacheRoutes := r.Group("/api/cache")
	{
		cacheRoutes.GET("/stats", optionalAuth, cacheHandler.Stats)
		cacheRoutes.POST("/clear", requireAuth, cacheHandler.Clear)
	}

	collectionHandler := handlers.NewCollectionHandler(collections)

	me := r.Group("/api/me", requireAuth)
	{
		me.GET("/team", collectionHandler.ListTeam)
		me.POST("/team", collectionHandler.AddTeamMember)
		me.DELETE("/team/:id", collectionHandler.RemoveTeamMember)
		me.GET("/favorites", collectionHandler.ListFavorites)
		me.POST("/favorites", collectionHandler.AddFavorite)
		me.DELETE("/favorites/:id", collectionHandler.RemoveFavorite)
	}

	return r, nil
}
