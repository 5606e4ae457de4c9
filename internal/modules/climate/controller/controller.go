package controller

import (
	"net/http"

	"hawaii-climate-server/internal/modules/climate/repository"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	repository repository.ClimateRepository
}

func NewClimateController(repository repository.ClimateRepository) ClimateController {
	return &climateControllerImpl{repository: repository}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleWelcome)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)

	// The literal start and start/end routes aggregate over compiled-in dates;
	// the wildcard forms take the bounds from the path.
	mux.HandleFunc("GET /api/v1.0/start", c.handleStart)
	mux.HandleFunc("GET /api/v1.0/start/end", c.handleStartEnd)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleStartDate)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleStartEndDates)
}
