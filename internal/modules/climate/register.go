package climate

import (
	"database/sql"
	"net/http"

	"hawaii-climate-server/internal/modules/climate/controller"
	"hawaii-climate-server/internal/modules/climate/repository"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB) {
	climateRepository := repository.NewRepository(db)
	climateController := controller.NewClimateController(climateRepository)
	climateController.RegisterRoutes(mux)
}
