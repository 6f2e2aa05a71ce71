package http

import (
	"net/http"

	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(uc interfaces.BatchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "pergamene",
			Version: types.Version,
			Batches: uc.CountBatches(r.Context()),
		}
		writeJSON(w, r, http.StatusOK, status)
	}
}
