package handlers

import (
	"github.com/fatflowers/hubreport/internal/app/service/crawl"
	"github.com/fatflowers/hubreport/internal/app/service/statistics"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespError carries the error message in data.
type RespError struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    string                   `json:"data"`
}

type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    map[string]string        `json:"data"`
}

// RespReports wraps the member report list in the standard envelope.
type RespReports struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []statistics.ReportItem  `json:"data"`
}

type RespCards struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []statistics.Card        `json:"data"`
}

type RespCrawlSummary struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    crawl.Summary            `json:"data"`
}

// RespAggregateSummary documents AggregateResponse; the summary fields are inlined.
type RespAggregateSummary struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerAggregateSummary  `json:"data"`
}

type SwaggerAggregateSummary struct {
	RunID         string   `json:"run_id"`
	Months        []string `json:"months"`
	Aggregated    int      `json:"aggregated"`
	NotApplicable int      `json:"not_applicable"`
	Failed        int      `json:"failed"`
	CacheFlushed  int      `json:"cache_flushed"`
}

type RespListMembershipPlans struct {
	Code    response.APIResponseCode               `json:"code"`
	Message string                                 `json:"message"`
	Data    statistics.ListMembershipPlansResponse `json:"data"`
}

type RespCreateHub struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    CreateHubResponse        `json:"data"`
}

type RespCrawlLogs struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.CrawlLog        `json:"data"`
}

type RespPlan struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Plan              `json:"data"`
}
