package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// pagination parameters from a request
type Params struct {
	Limit  int
	Offset int
}

// pagination metadata for a response
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// clamps limit into (0, maxLimit] and offset to >= 0
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{
		Limit:  limit,
		Offset: offset,
	}
}

// reads ?limit and ?offset; unparsable values fall back to defaults
func FromQuery(c *gin.Context) Params {
	limit, _ := strconv.Atoi(c.Query("limit"))   //nolint:errcheck // zero falls back to default
	offset, _ := strconv.Atoi(c.Query("offset")) //nolint:errcheck // zero is the first page

	return DefaultParams(limit, offset, DefaultLimit, MaxLimit)
}
