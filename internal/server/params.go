package server

import (
	"net/url"
	"strconv"

	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
	"github.com/paulexconde/vaxreview/internal/services"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

// MaxPageSize caps the size query parameter.
const MaxPageSize = 100

// parseFeedQuery reads the feed filter and page from the query string. Absent
// or empty parameters leave the constraint off.
func parseFeedQuery(q url.Values) (services.FeedFilter, paginator.PageRequest, error) {
	var (
		filter services.FeedFilter
		req    paginator.PageRequest
		errs   fault.ValidationErrors
	)

	filter.Q = stringParam(q, "q")
	filter.Gender = stringParam(q, "gender")
	filter.VaccineType = stringParam(q, "vaccine_type")
	filter.Round = stringParam(q, "round")

	filter.MinAge = intParam(q, "min_age", &errs)
	filter.MaxAge = intParam(q, "max_age", &errs)
	filter.IsCrossed = boolParam(q, "is_crossed", &errs)
	filter.IsPregnant = boolParam(q, "is_pregnant", &errs)
	filter.IsUnderlyingDisease = boolParam(q, "is_underlying_disease", &errs)

	req = pageParams(q, &errs)

	return filter, req, errs.OrNil()
}

func parsePageQuery(q url.Values) (paginator.PageRequest, error) {
	var errs fault.ValidationErrors
	req := pageParams(q, &errs)
	return req, errs.OrNil()
}

func pageParams(q url.Values, errs *fault.ValidationErrors) paginator.PageRequest {
	var req paginator.PageRequest
	if page := intParam(q, "page", errs); page != nil {
		req.Page = *page
	}
	if size := intParam(q, "size", errs); size != nil {
		req.Size = min(*size, MaxPageSize)
	}
	return req
}

func stringParam(q url.Values, name string) *string {
	v := q.Get(name)
	if v == "" {
		return nil
	}
	return &v
}

func intParam(q url.Values, name string, errs *fault.ValidationErrors) *int {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fault.NewValidationError(name, raw, "must be an integer"))
		return nil
	}
	return &n
}

func boolParam(q url.Values, name string, errs *fault.ValidationErrors) *bool {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fault.NewValidationError(name, raw, "must be true or false"))
		return nil
	}
	return &b
}
