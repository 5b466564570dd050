package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallledger/arview/pkg/db/pagination"
)

const dateParamLayout = "2006-01-02"

func bindPagination(c *gin.Context) (pagination.Pagination, error) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		return p, newValidationError("page", "invalid_pagination", "page and size must be integers")
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// dateParam parses a required YYYY-MM-DD query parameter.
func dateParam(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, newValidationError(name, "required", name+" is required")
	}
	t, err := time.ParseInLocation(dateParamLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, newValidationError(name, "invalid_date", name+" must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// intParam parses an optional integer query parameter, clamped to
// [min, max], returning def when absent or unparseable.
func intParam(c *gin.Context, name string, def, min, max int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
