package content

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"codeberg.org/creatorlens/server/creatorlens/commerceposts"
	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/internal/auth"
	"codeberg.org/creatorlens/server/internal/contentmatch"
	"codeberg.org/creatorlens/server/internal/errors"
	"codeberg.org/creatorlens/server/internal/textmatch"
)

// satisfied by *posts.Repository
type PostLister interface {
	ListPublishedBetween(ctx context.Context, userID string, start, end time.Time) ([]posts.Post, error)
}

// satisfied by *commerceposts.Repository
type CommerceLister interface {
	ListByUser(ctx context.Context, userID string, window commerceposts.DateRange) ([]commerceposts.CommercePost, error)
}

// MatchesHandler godoc
// @Summary Match content to commerce posts
// @Description Links the caller's content posts published in [start, end] to commerce posts by product mention or posting time
// @Tags content
// @Produce json
// @Param start query string false "First day, YYYY-MM-DD (default 29 days before end)"
// @Param end query string false "Last day, YYYY-MM-DD (default today)"
// @Success 200 {object} MatchesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/content/matches [get]
// @Security BearerAuth
func MatchesHandler(postLister PostLister, commerceLister CommerceLister, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		window, err := parseWindow(c.Query("start"), c.Query("end"), now())
		if err != nil {
			errors.BadRequest(c, "invalid date range", err)
			return
		}

		// commerce posts just outside the window can still be a time-window match
		commerceWindow := commerceposts.DateRange{
			Start: window.Start.Add(-contentmatch.TimeWindow),
			End:   window.End.Add(contentmatch.TimeWindow),
		}

		var (
			postList     []posts.Post
			commerceList []commerceposts.CommercePost
		)

		g, ctx := errgroup.WithContext(c.Request.Context())

		g.Go(func() error {
			list, err := postLister.ListPublishedBetween(ctx, userID, window.Start, window.End)
			if err != nil {
				return fmt.Errorf("failed to load content posts: %w", err)
			}
			postList = list
			return nil
		})

		g.Go(func() error {
			list, err := commerceLister.ListByUser(ctx, userID, commerceWindow)
			if err != nil {
				return fmt.Errorf("failed to load commerce posts: %w", err)
			}
			commerceList = list
			return nil
		})

		if err := g.Wait(); err != nil {
			errors.InternalError(c, "failed to load content", err)
			return
		}

		matches := contentmatch.MatchContentToCommerce(postList, commerceList)

		c.JSON(http.StatusOK, MatchesResponse{
			Start:   window.Start.Format(dateLayout),
			End:     window.End.AddDate(0, 0, -1).Format(dateLayout),
			Matches: matches,
			Summary: contentmatch.Summarize(matches),
		})
	}
}

// LinksHandler godoc
// @Summary Extract affiliate links
// @Description Extracts affiliate link slugs from free text
// @Tags content
// @Accept json
// @Produce json
// @Param request body LinksRequest true "Text to scan"
// @Success 200 {object} LinksResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/content/links [post]
// @Security BearerAuth
func LinksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LinksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		c.JSON(http.StatusOK, LinksResponse{Links: textmatch.ExtractLinks(req.Text)})
	}
}

// parses inclusive YYYY-MM-DD bounds into a half-open UTC range
// missing bounds default to the last 30 days ending today
func parseWindow(startParam, endParam string, now time.Time) (commerceposts.DateRange, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today

	if endParam != "" {
		parsed, err := time.Parse(dateLayout, endParam)
		if err != nil {
			return commerceposts.DateRange{}, fmt.Errorf("end: %w", err)
		}
		end = parsed
	}

	// end is an inclusive calendar day
	window := commerceposts.LastDays(end.AddDate(0, 0, 1), defaultWindowDays)
	if startParam != "" {
		parsed, err := time.Parse(dateLayout, startParam)
		if err != nil {
			return commerceposts.DateRange{}, fmt.Errorf("start: %w", err)
		}
		window.Start = parsed
	}

	if window.Start.After(end) {
		return commerceposts.DateRange{}, fmt.Errorf("start %s is after end %s", window.Start.Format(dateLayout), end.Format(dateLayout))
	}

	if end.Sub(window.Start) > maxWindowDays*24*time.Hour {
		return commerceposts.DateRange{}, fmt.Errorf("range exceeds %d days", maxWindowDays)
	}

	return window, nil
}
