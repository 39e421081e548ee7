package http

import (
	"net/http"
	"strconv"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/service"

	"github.com/gorilla/mux"
)

type LocationHandler struct {
	locationSvc service.LocationService
}

func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	region := q.Get("region")
	difficulty := domain.Difficulty(q.Get("difficulty"))

	var locations []domain.Location
	var err error
	if region != "" || difficulty != "" {
		locations, err = h.locationSvc.SearchLocations(r.Context(), region, difficulty)
	} else {
		locations, err = h.locationSvc.ListLocations(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, locations)
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, domain.Validationf("invalid location id"))
		return
	}

	location, err := h.locationSvc.GetLocation(r.Context(), int32(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, location)
}
