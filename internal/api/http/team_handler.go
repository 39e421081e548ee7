package http

import (
	"net/http"
	"strconv"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/repository"
	"gomate-backend/internal/service"

	"github.com/gorilla/mux"
)

type TeamHandler struct {
	teamSvc service.TeamService
}

func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

type joinRequest struct {
	Note string `json:"note"`
}

type myTeamView struct {
	Team       domain.Team       `json:"team"`
	Membership domain.Membership `json:"membership"`
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTeamInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	team, err := h.teamSvc.CreateTeam(r.Context(), userIDFrom(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, team)
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TeamFilter{
		Status: domain.TeamStatus(q.Get("status")),
	}
	if v := q.Get("location_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			writeError(w, domain.Validationf("invalid location_id"))
			return
		}
		filter.LocationID = int32(id)
	}
	filter.Page = parseIntDefault(q.Get("page"), 1)
	filter.PageSize = parseIntDefault(q.Get("page_size"), 20)

	teams, total, err := h.teamSvc.ListTeams(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"teams": teams, "total": total})
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["id"]
	detail, err := h.teamSvc.GetTeam(r.Context(), userIDFrom(r), teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, detail)
}

func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	membership, err := h.teamSvc.JoinTeam(r.Context(), userIDFrom(r), mux.Vars(r)["id"], req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, membership)
}

func (h *TeamHandler) Approve(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	team, err := h.teamSvc.ApproveMember(r.Context(), userIDFrom(r), mux.Vars(r)["id"], memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, team)
}

func (h *TeamHandler) Reject(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.teamSvc.RejectMember(r.Context(), userIDFrom(r), mux.Vars(r)["id"], memberID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamSvc.LeaveTeam(r.Context(), userIDFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, team)
}

func (h *TeamHandler) Dissolve(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamSvc.DissolveTeam(r.Context(), userIDFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, team)
}

func (h *TeamHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	teams, memberships, err := h.teamSvc.ListMyTeams(r.Context(), userIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]myTeamView, 0, len(teams))
	for i := range teams {
		views = append(views, myTeamView{Team: teams[i], Membership: memberships[i]})
	}
	writeData(w, http.StatusOK, views)
}

func memberIDFromPath(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["userId"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, domain.Validationf("invalid member id")
	}
	return int32(id), nil
}

func parseIntDefault(raw string, def int32) int32 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return def
	}
	return int32(v)
}
