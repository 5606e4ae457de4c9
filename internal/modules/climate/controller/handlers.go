package controller

import (
	"log/slog"
	"net/http"

	"hawaii-climate-server/internal/modules/climate/repository"
	"hawaii-climate-server/internal/modules/climate/types"
	"hawaii-climate-server/internal/utils"
)

func (c *climateControllerImpl) handleWelcome(w http.ResponseWriter, r *http.Request) {
	utils.WriteText(w, http.StatusOK, routeListing)
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	records, err := c.repository.GetPrecipitation(r.Context())
	if err != nil {
		slog.Error("precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, records)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.GetStations(r.Context())
	if err != nil {
		slog.Error("stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	station, observations, err := c.repository.GetMostActiveStationTobs(r.Context())
	if err != nil {
		slog.Error("tobs: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature observations")
		return
	}
	slog.Debug("tobs: most active station",
		"station", station.StationID,
		"observations_since_cutoff", station.Count,
		"rows", len(observations),
	)
	utils.WriteJSON(w, http.StatusOK, observations)
}

func (c *climateControllerImpl) handleStart(w http.ResponseWriter, r *http.Request) {
	c.writeTemperatureStats(w, r, repository.DefaultStartDate, nil)
}

func (c *climateControllerImpl) handleStartEnd(w http.ResponseWriter, r *http.Request) {
	end := repository.DefaultEndDate
	c.writeTemperatureStats(w, r, repository.DefaultStartDate, &end)
}

func (c *climateControllerImpl) handleStartDate(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate("start", r.PathValue("start"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.writeTemperatureStats(w, r, start, nil)
}

func (c *climateControllerImpl) handleStartEndDates(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.writeTemperatureStats(w, r, start, &end)
}

// writeTemperatureStats always answers with a one-element array, even when
// no measurement falls in the range.
func (c *climateControllerImpl) writeTemperatureStats(w http.ResponseWriter, r *http.Request, start string, end *string) {
	stats, err := c.repository.GetTemperatureStats(r.Context(), start, end)
	if err != nil {
		slog.Error("temperature stats: query failed", "start", start, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature statistics")
		return
	}
	utils.WriteJSON(w, http.StatusOK, []types.TemperatureStats{stats})
}
