package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/hubreport/internal/app/service/statistics"
	"github.com/fatflowers/hubreport/internal/platform/cache"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/response"
	"github.com/fatflowers/hubreport/pkg/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Messages of the public reporting API, kept stable for dashboard clients.
const (
	msgNoSuchHub      = "No such hub found"
	msgNoSuchPlanType = "No such plan type found"
	msgBadMonth       = "Date should be in YYYY-MM format"
	msgUnavailable    = "Service temporarily unavailable, try again later."
)

// reportError answers a failed public request. Input errors are 400 with the
// client-facing message; anything else is logged and answered with 500.
func reportError(c *gin.Context, log *zap.SugaredLogger, err error) {
	cache.NoStore(c)
	var msg string
	switch {
	case errors.Is(err, statistics.ErrHubNotFound):
		msg = msgNoSuchHub
	case errors.Is(err, types.ErrUnknownPlanType):
		msg = msgNoSuchPlanType
	case errors.Is(err, dateutil.ErrInvalidDate):
		msg = msgBadMonth
	default:
		logctx.FromGin(c, log).Errorw("report request failed", "err", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, msgUnavailable))
		return
	}
	c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, msg))
}

// @Summary      List member reports
// @Description  Monthly new, retained and leaving members with revenue per hub plan.
// @Tags         Reports
// @Produce      json
// @Param        hub_name   query  string  false  "Hub name"
// @Param        plan_type  query  string  false  "Plan type"  Enums(Full-Time, Part-Time, Others, Ignore)
// @Param        from       query  string  false  "First month, YYYY-MM"
// @Param        to         query  string  false  "Last month, YYYY-MM"
// @Success      200  {object}  handlers.RespReports
// @Failure      400  {object}  handlers.RespError
// @Router       /api/reports [get]
func ApiListReports(stats *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q statistics.ReportQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			cache.NoStore(c)
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		items, err := stats.ListReports(c.Request.Context(), q)
		if err != nil {
			reportError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Dashboard cards
// @Description  Active, new and leaving member figures for one hub or all hubs.
// @Tags         Reports
// @Produce      json
// @Param        hub_name  query  string  false  "Hub name"
// @Success      200  {object}  handlers.RespCards
// @Failure      400  {object}  handlers.RespError
// @Router       /api/cards [get]
func ApiCards(stats *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cards, err := stats.Cards(c.Request.Context(), c.Query("hub_name"))
		if err != nil {
			reportError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(cards))
	}
}

// @Summary      Export member reports
// @Description  Same filters as /api/reports, rendered as an XLSX workbook.
// @Tags         Reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        hub_name   query  string  false  "Hub name"
// @Param        plan_type  query  string  false  "Plan type"
// @Param        from       query  string  false  "First month, YYYY-MM"
// @Param        to         query  string  false  "Last month, YYYY-MM"
// @Success      200  {file}    file
// @Failure      400  {object}  handlers.RespError
// @Router       /api/reports/export [get]
func ApiExportReports(stats *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q statistics.ReportQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		data, err := stats.ExportXLSX(c.Request.Context(), q)
		if err != nil {
			reportError(c, log, err)
			return
		}
		name := "member_reports"
		if q.HubName != "" {
			name += "_" + q.HubName
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
		c.Data(http.StatusOK, xlsxContentType, data)
	}
}

// RegisterReportRoutes mounts the public reporting API. JSON reads go through
// the response cache; the export is rendered on every call.
func RegisterReportRoutes(r gin.IRouter, stats *statistics.Service, rc *cache.ResponseCache, log *zap.SugaredLogger) {
	r.GET("/reports", rc.Middleware(), ApiListReports(stats, log))
	r.GET("/cards", rc.Middleware(), ApiCards(stats, log))
	r.GET("/reports/export", ApiExportReports(stats, log))
}
