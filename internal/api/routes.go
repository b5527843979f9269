package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/maps-key", handler.GetMapsKey)
		api.GET("/cities", handler.GetCities)

		api.GET("/nearby-places", handler.GetNearbyPlaces)
		api.POST("/nearby-places", handler.SearchNearbyPlaces)
		api.GET("/recent-searches", handler.GetRecentSearches)

		api.GET("/properties", handler.GetAllProperties)
		api.POST("/properties", handler.ImportProperties)
		api.POST("/update-coordinates", handler.UpdateCoordinates)

		sessions := api.Group("/compare/sessions")
		{
			sessions.POST("", handler.CreateComparison)
			sessions.GET("/:id", handler.GetComparison)
			sessions.POST("/:id/locate", handler.LocateForComparison)
			sessions.POST("/:id/route", handler.RouteForComparison)
			sessions.PUT("/:id/mode", handler.SetComparisonMode)
			sessions.DELETE("/:id", handler.DeleteComparison)
		}
	}
}
