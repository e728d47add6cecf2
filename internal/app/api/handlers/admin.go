package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/hubreport/internal/app/service/crawl"
	"github.com/fatflowers/hubreport/internal/app/service/report"
	"github.com/fatflowers/hubreport/internal/app/service/statistics"
	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/platform/cache"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/response"
	"github.com/fatflowers/hubreport/pkg/types"
)

// CrawlRequest names one date, or an inclusive from/to range, in YYYY-MM-DD.
type CrawlRequest struct {
	Date string `json:"date"`
	From string `json:"from"`
	To   string `json:"to"`
	Hub  string `json:"hub"`
}

// AggregateRequest names one month, or an inclusive from/to range, in YYYY-MM.
type AggregateRequest struct {
	Month string `json:"month"`
	From  string `json:"from"`
	To    string `json:"to"`
	Hub   string `json:"hub"`
}

type CreateHubRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

type SetPlanTypeRequest struct {
	Type types.PlanType `json:"type" binding:"required"`
}

type CreateHubResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Created  bool   `json:"created"`
}

// AggregateResponse is the report run summary plus the number of cached
// responses dropped after it.
type AggregateResponse struct {
	*report.Summary
	CacheFlushed int `json:"cache_flushed"`
}

// parseRange resolves a single value or a from/to pair with parse.
func parseRange(single, from, to string, parse func(string) (time.Time, error)) (time.Time, time.Time, error) {
	if single != "" {
		d, err := parse(single)
		return d, d, err
	}
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: either a single value or both from and to are required", dateutil.ErrInvalidDate)
	}
	f, err := parse(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := parse(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return f, t, nil
}

// adminError maps service errors to the response envelope, always with HTTP 200.
func adminError(c *gin.Context, err error) {
	code := response.APIResponseCodeError
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = response.APIResponseCodeNotFound
	case errors.Is(err, dateutil.ErrInvalidDate), errors.Is(err, types.ErrUnknownPlanType):
		code = response.APIResponseCodeBadRequest
	}
	c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
}

// @Summary      Run crawl (Admin)
// @Description  Fetches snapshots for each date and hub and applies them to the ledger.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.CrawlRequest true "Date or date range, optional hub"
// @Success      200  {object}  handlers.RespCrawlSummary
// @Router       /api/v1/admin/crawl [post]
func ApiCrawl(svc *crawl.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		from, to, err := parseRange(req.Date, req.From, req.To, dateutil.ParseDate)
		if err != nil {
			adminError(c, err)
			return
		}
		sum, err := svc.ProcessRange(c.Request.Context(), from, to, req.Hub)
		if err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sum))
	}
}

// @Summary      Run aggregation (Admin)
// @Description  Recomputes member reports for each month and hub plan, then flushes cached reports.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.AggregateRequest true "Month or month range, optional hub"
// @Success      200  {object}  handlers.RespAggregateSummary
// @Router       /api/v1/admin/aggregate [post]
func ApiAggregate(svc *report.Service, rc *cache.ResponseCache, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AggregateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		from, to, err := parseRange(req.Month, req.From, req.To, dateutil.ParseMonth)
		if err != nil {
			adminError(c, err)
			return
		}
		sum, err := svc.AggregateRange(c.Request.Context(), from, to, req.Hub)
		if err != nil {
			adminError(c, err)
			return
		}
		flushed, err := rc.Flush(c.Request.Context())
		if err != nil {
			logctx.FromGin(c, log).Warnw("failed to flush report cache", "err", err)
		}
		c.JSON(http.StatusOK, response.OKT(&AggregateResponse{Summary: sum, CacheFlushed: flushed}))
	}
}

// @Summary      List membership plans (Admin)
// @Description  Retrieves a paginated and filterable list of ledger intervals.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.ListMembershipPlansRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListMembershipPlans
// @Router       /api/v1/admin/list_membership_plans [post]
func ApiListMembershipPlans(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.ListMembershipPlansRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := stats.ListMembershipPlans(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Create hub (Admin)
// @Description  Creates a hub, or returns the existing one with the same name.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateHubRequest true "Hub name and optional location"
// @Success      200  {object}  handlers.RespCreateHub
// @Router       /api/v1/admin/hubs [post]
func ApiCreateHub(svc *crawl.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateHubRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		hub, created, err := svc.CreateHub(c.Request.Context(), req.Name, req.Location)
		if err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CreateHubResponse{ID: hub.ID, Name: hub.Name, Location: req.Location, Created: created}))
	}
}

// @Summary      Crawl history (Admin)
// @Description  Latest crawl attempts of a hub, newest first.
// @Tags         Admin
// @Produce      json
// @Param        name   path   string  true   "Hub name"
// @Param        limit  query  int     false  "Maximum rows, default 50"
// @Success      200  {object}  handlers.RespCrawlLogs
// @Router       /api/v1/admin/hubs/{name}/crawl_logs [get]
func ApiCrawlLogs(svc *crawl.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		logs, err := svc.History(c.Request.Context(), c.Param("name"), limit)
		if err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(logs))
	}
}

// @Summary      Set plan type (Admin)
// @Description  Reclassifies a plan. Takes effect on the next aggregation run.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Plan id"
// @Param        request  body  handlers.SetPlanTypeRequest  true  "New plan type"
// @Success      200  {object}  handlers.RespPlan
// @Router       /api/v1/admin/plans/{id}/type [put]
func ApiSetPlanType(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetPlanTypeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		plan, err := stats.SetPlanType(c.Request.Context(), c.Param("id"), string(req.Type))
		if err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(plan))
	}
}

func RegisterAdminRoutes(r gin.IRouter, crawler *crawl.Service, reports *report.Service, stats *statistics.Service, rc *cache.ResponseCache, log *zap.SugaredLogger) {
	r.POST("/crawl", ApiCrawl(crawler))
	r.POST("/aggregate", ApiAggregate(reports, rc, log))
	r.POST("/list_membership_plans", ApiListMembershipPlans(stats))
	r.POST("/hubs", ApiCreateHub(crawler))
	r.GET("/hubs/:name/crawl_logs", ApiCrawlLogs(crawler))
	r.PUT("/plans/:id/type", ApiSetPlanType(stats))
}
