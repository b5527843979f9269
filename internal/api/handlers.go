package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rentradar/server/config"
	"rentradar/server/internal/compare"
	"rentradar/server/internal/database"
	"rentradar/server/internal/geocoding"
	"rentradar/server/internal/models"
	"rentradar/server/internal/poi"
	"rentradar/server/internal/queue"
	"rentradar/server/internal/routing"
	"rentradar/server/internal/searches"
)

type Handler struct {
	db             *database.Database
	logger         *logrus.Logger
	geocoder       *geocoding.Geocoder
	locator        *poi.Locator
	comparisons    *compare.Service
	listings       *queue.ListingQueue
	recent         *searches.Store
	mapsKey        string
	requestTimeout time.Duration
}

type PropertyQuery struct {
	City     string `form:"city"`
	MinRent  int    `form:"minRent"`
	MaxRent  int    `form:"maxRent"`
	Bedrooms int    `form:"bedrooms"`
}

type NearbyQuery struct {
	Lat  float64            `form:"lat" binding:"required"`
	Lng  float64            `form:"lng" binding:"required"`
	Type models.POICategory `form:"type"`
}

type NearbyRequest struct {
	Lat     float64            `json:"lat" binding:"required"`
	Lng     float64            `json:"lng" binding:"required"`
	Type    models.POICategory `json:"type"`
	Keyword string             `json:"keyword"`
	Radius  int                `json:"radius"`
}

type ImportRequest struct {
	Properties []*models.Property `json:"properties" binding:"required"`
}

type CreateComparisonRequest struct {
	PropertyIDs []int64 `json:"property_ids" binding:"required"`
}

type LocateRequest struct {
	Type    models.POICategory `json:"type"`
	Keyword string             `json:"keyword"`
	Radius  int                `json:"radius"`
	Mode    models.TravelMode  `json:"mode"`
}

type RouteRequest struct {
	PropertyID int64              `json:"property_id" binding:"required"`
	PlaceID    string             `json:"place_id"`
	Location   *models.Coordinate `json:"location"`
	Mode       models.TravelMode  `json:"mode"`
}

type ModeRequest struct {
	Mode compare.Mode `json:"mode" binding:"required"`
}

func NewHandler(db *database.Database, geocoder *geocoding.Geocoder, locator *poi.Locator, comparisons *compare.Service, listings *queue.ListingQueue, recent *searches.Store, mapsKey string, requestTimeout time.Duration, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:             db,
		logger:         logger,
		geocoder:       geocoder,
		locator:        locator,
		comparisons:    comparisons,
		listings:       listings,
		recent:         recent,
		mapsKey:        mapsKey,
		requestTimeout: requestTimeout,
	}
}

// GetMapsKey hands the browser its maps API key. An unset key is a normal
// degraded answer, not an error: the client reads the configured flag and
// falls back to static comparison mode.
func (h *Handler) GetMapsKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"key":        h.mapsKey,
		"configured": h.mapsKey != "",
	})
}

func (h *Handler) GetNearbyPlaces(c *gin.Context) {
	var query NearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse nearby places query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	h.locate(c, models.Coordinate{Lat: query.Lat, Lng: query.Lng}, poi.Query{Category: query.Type})
}

func (h *Handler) SearchNearbyPlaces(c *gin.Context) {
	var req NearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse nearby places request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	h.locate(c, models.Coordinate{Lat: req.Lat, Lng: req.Lng}, poi.Query{
		Category:     req.Type,
		Keyword:      req.Keyword,
		RadiusMeters: req.Radius,
	})
}

func (h *Handler) locate(c *gin.Context, loc models.Coordinate, query poi.Query) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	places, err := h.locator.Locate(ctx, loc, query)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find nearby places")
		c.JSON(h.locateStatus(err), gin.H{"error": "Failed to find nearby places"})
		return
	}

	if query.Keyword != "" && h.recent != nil {
		h.recent.Add(query.Keyword)
	}

	// An empty list is a normal answer, not an error.
	if places == nil {
		places = []models.POI{}
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}

func (h *Handler) locateStatus(err error) int {
	switch {
	case errors.Is(err, poi.ErrNoQuery):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) GetAllProperties(c *gin.Context) {
	var query PropertyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse property filters")
	}

	properties, err := h.db.GetAllProperties(models.PropertyFilter{
		City:     query.City,
		MinRent:  query.MinRent,
		MaxRent:  query.MaxRent,
		Bedrooms: query.Bedrooms,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

func (h *Handler) ImportProperties(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse import request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if err := h.listings.Push(req.Properties); err != nil {
		h.logger.WithError(err).Error("Failed to queue listings")
		status := http.StatusInternalServerError
		if errors.Is(err, queue.ErrQueueFull) {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"error": "Failed to queue listings"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"count":  len(req.Properties),
	})
}

func (h *Handler) UpdateCoordinates(c *gin.Context) {
	err := h.db.UpdateMissingCoordinates(h.geocoder)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update coordinates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coordinates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "Coordinates update process started",
	})
}

func (h *Handler) GetCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cities":  config.SupportedCities,
		"default": config.DefaultCity,
	})
}

func (h *Handler) GetRecentSearches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"searches": h.recent.Terms()})
}

func (h *Handler) CreateComparison(c *gin.Context) {
	var req CreateComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse comparison request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	comparison, err := h.comparisons.Create(req.PropertyIDs)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create comparison")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comparison"})
		return
	}

	c.JSON(http.StatusCreated, comparison.Snapshot())
}

func (h *Handler) GetComparison(c *gin.Context) {
	comparison, ok := h.comparisons.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comparison not found"})
		return
	}

	c.JSON(http.StatusOK, comparison.Snapshot())
}

func (h *Handler) LocateForComparison(c *gin.Context) {
	var req LocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse locate request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	snapshot, err := h.comparisons.Locate(c.Param("id"), poi.Query{
		Category:     req.Type,
		Keyword:      req.Keyword,
		RadiusMeters: req.Radius,
	}, req.Mode)
	if err != nil {
		h.logger.WithError(err).Error("Failed to locate places for comparison")
		c.JSON(h.comparisonStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) RouteForComparison(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse route request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}
	if req.PlaceID == "" && req.Location == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place_id or location is required"})
		return
	}

	route, err := h.comparisons.RouteTo(c.Param("id"), req.PropertyID, req.PlaceID, req.Location, req.Mode)
	if err != nil {
		h.logger.WithError(err).Error("Failed to calculate route")
		c.JSON(h.comparisonStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"route": route})
}

func (h *Handler) SetComparisonMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse mode request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	snapshot, err := h.comparisons.SetMode(c.Param("id"), req.Mode)
	if err != nil {
		h.logger.WithError(err).Error("Failed to set comparison mode")
		c.JSON(h.comparisonStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) DeleteComparison(c *gin.Context) {
	h.comparisons.Teardown(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) comparisonStatus(err error) int {
	switch {
	case errors.Is(err, compare.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, compare.ErrNoInteractive):
		return http.StatusConflict
	case errors.Is(err, routing.ErrTimedOut):
		return http.StatusGatewayTimeout
	case errors.Is(err, compare.ErrPlaceholder),
		errors.Is(err, compare.ErrUnknownProp),
		errors.Is(err, compare.ErrMissingLatLng),
		errors.Is(err, compare.ErrInvalidMode),
		errors.Is(err, poi.ErrNoQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
