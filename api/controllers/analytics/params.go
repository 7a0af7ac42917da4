package analytics

import (
	"net/http"
	"time"

	"github.com/angelmondragon/pointsdash/api/validators"
	"github.com/angelmondragon/pointsdash/internal/display"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
)

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

type dashboardQuery struct {
	Sort string `json:"sort" validate:"omitempty,max=64"`
	Dir  string `json:"dir" validate:"omitempty,oneof=asc desc"`
	At   string `json:"at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type dashboardParams struct {
	sort   string
	dir    display.Direction
	anchor time.Time
}

// parseDashboardParams reads ?sort=&dir=&at=. A zero anchor lets the engine use its own clock.
func parseDashboardParams(r *http.Request, now time.Time) (dashboardParams, error) {
	values := validators.QueryValues(r, "sort", "at")
	q := dashboardQuery{
		Sort: values["sort"],
		Dir:  validators.QueryLower(r, "dir"),
		At:   values["at"],
	}
	if err := validators.ValidateStruct(q); err != nil {
		return dashboardParams{}, err
	}

	params := dashboardParams{sort: q.Sort, dir: display.Ascending}
	if q.Dir != "" {
		params.dir = display.Direction(q.Dir)
	}
	if params.sort != "" && !knownSortColumn(params.sort) {
		return dashboardParams{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort column").
			WithDetails(map[string]any{"sort": params.sort, "allowed": sortColumnNames()})
	}

	if q.At != "" {
		anchor, err := time.Parse(time.RFC3339, q.At)
		if err != nil {
			return dashboardParams{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid at timestamp")
		}
		if anchor.After(now) {
			return dashboardParams{}, pkgerrors.New(pkgerrors.CodeValidation, "at must not be in the future")
		}
		params.anchor = anchor
	}
	return params, nil
}
