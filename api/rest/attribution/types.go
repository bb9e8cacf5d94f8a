package attribution

import (
	"codeberg.org/creatorlens/server/api/rest/pagination"
	"codeberg.org/creatorlens/server/internal/attribution"
)

type ListResponse struct {
	Attributions []attribution.AttributionDetail `json:"attributions"`
	Pagination   pagination.Meta                 `json:"pagination"`
}
