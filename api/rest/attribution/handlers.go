package attribution

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/creatorlens/server/api/rest/pagination"
	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/auth"
	"codeberg.org/creatorlens/server/internal/errors"
)

// recomputes a user's attributions, satisfied by *attribution.Service
type Runner interface {
	RunAttribution(ctx context.Context, userID string) (*attribution.Result, error)
}

// RunHandler godoc
// @Summary Recompute attributions
// @Description Matches every sale of the caller to a content post and replaces the stored attributions and post rollups
// @Tags attribution
// @Produce json
// @Success 200 {object} attribution.Result
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Failure 504 {object} errors.ErrorResponse
// @Router /api/v1/attribution/run [post]
// @Security BearerAuth
func RunHandler(runner Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		result, err := runner.RunAttribution(c.Request.Context(), userID)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// ListHandler godoc
// @Summary List attributions
// @Description Returns the caller's stored attributions, newest sale first
// @Tags attribution
// @Produce json
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Number of attributions to skip"
// @Success 200 {object} ListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/attribution [get]
// @Security BearerAuth
func ListHandler(reader attribution.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		params := pagination.FromQuery(c)

		list, total, err := reader.ListAttributions(c.Request.Context(), userID, params.Limit, params.Offset)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		if list == nil {
			list = []attribution.AttributionDetail{}
		}

		c.JSON(http.StatusOK, ListResponse{
			Attributions: list,
			Pagination:   pagination.NewMeta(params, total),
		})
	}
}

// LatestRunHandler godoc
// @Summary Get latest attribution run
// @Description Returns the caller's most recent completed run
// @Tags attribution
// @Produce json
// @Success 200 {object} attribution.Run
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/attribution/runs/latest [get]
// @Security BearerAuth
func LatestRunHandler(reader attribution.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		run, err := reader.LatestRun(c.Request.Context(), userID)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, run)
	}
}
