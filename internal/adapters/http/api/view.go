package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/types"
)

const maxViewLimit = 50

// ViewDependencies computes one-shot views.
type ViewDependencies interface {
	View(ctx context.Context, q types.ViewQuery) (types.View, error)
}

// ViewHandler handles GET /view.
type ViewHandler struct {
	deps ViewDependencies
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps ViewDependencies) *ViewHandler {
	return &ViewHandler{deps: deps}
}

// HandleView handles GET /view?user_id&lat&lon&categories&radius_km&range&q&limit.
// The user may also be given through the X-User-ID header.
func (h *ViewHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	const op = "api.view"
	if !requireMethod(w, r, op, http.MethodGet) {
		return
	}
	q, err := parseViewQuery(r.URL.Query())
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if q.UserID == "" {
		q.UserID = strings.TrimSpace(r.Header.Get(userHeader))
	}
	view, err := h.deps.View(r.Context(), q)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func parseViewQuery(v url.Values) (types.ViewQuery, error) {
	q := types.ViewQuery{UserID: strings.TrimSpace(v.Get("user_id"))}

	loc, err := parseLocation(v)
	if err != nil {
		return q, err
	}
	q.Location = loc

	if raw := v.Get("categories"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Criteria.Categories = append(q.Criteria.Categories, c)
			}
		}
	}
	if raw := v.Get("radius_km"); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		if err != nil || km <= 0 {
			return q, errors.New("radius_km must be a positive number")
		}
		q.Criteria.RadiusKm = &km
	}
	r, err := filter.ParseDateRange(v.Get("range"))
	if err != nil {
		return q, err
	}
	q.Criteria.Range = r
	q.Criteria.Search = strings.TrimSpace(v.Get("q"))

	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxViewLimit {
			return q, errors.New("limit must be between 1 and 50")
		}
		q.Limit = n
	}
	return q, nil
}

// parseLocation reads the optional lat/lon pair; nil means no location.
func parseLocation(v url.Values) (*model.Coordinate, error) {
	lat, lon := v.Get("lat"), v.Get("lon")
	switch {
	case lat == "" && lon == "":
		return nil, nil
	case lat == "" || lon == "":
		return nil, errors.New("lat and lon must be given together")
	default:
		return parseCoordinate(lat, lon)
	}
}

func parseCoordinate(lat, lon string) (*model.Coordinate, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return nil, errors.New("lat must be a number between -90 and 90")
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil || lo < -180 || lo > 180 {
		return nil, errors.New("lon must be a number between -180 and 180")
	}
	return &model.Coordinate{Latitude: la, Longitude: lo}, nil
}
