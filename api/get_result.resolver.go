package api

import (
	"quantlab/internal/app"
	"quantlab/internal/domain"
	"quantlab/internal/scheduler"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type backtestResultResponse struct {
	Fingerprint string                 `json:"fingerprint"`
	Status      string                 `json:"status"`
	StrategyID  string                 `json:"strategyID,omitempty"`
	Params      domain.ParamBinding    `json:"params,omitempty"`
	StartDate   string                 `json:"startDate,omitempty"`
	EndDate     string                 `json:"endDate,omitempty"`
	StaleSource bool                   `json:"staleSource,omitempty"`
	Summary     *domain.SummaryMetrics `json:"summary,omitempty"`
	Periods     []domain.PeriodRecord  `json:"periods,omitempty"`
	ErrorDetail string                 `json:"errorDetail,omitempty"`
	CompletedAt string                 `json:"completedAt,omitempty"`
}

func toResultResponse(state *app.ResultState) backtestResultResponse {
	out := backtestResultResponse{
		Fingerprint: state.Fingerprint,
		Status:      string(state.State),
	}
	if state.Result == nil {
		return out
	}

	r := state.Result
	out.Status = string(r.Status)
	out.StrategyID = r.StrategyID.String()
	out.Params = r.Params
	out.StartDate = r.Window.Start.Format(time.DateOnly)
	out.EndDate = r.Window.End.Format(time.DateOnly)
	out.StaleSource = r.StaleSource
	out.Summary = &r.Summary
	out.Periods = r.Periods
	out.ErrorDetail = r.ErrorDetail
	out.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	return out
}

func (m ApiHandler) getResult(c *gin.Context) {
	fingerprint := c.Param("fingerprint")

	state, err := m.BacktestService.GetResult(c.Request.Context(), fingerprint)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, toResultResponse(state))
}

func (m ApiHandler) listResults(c *gin.Context) {
	strategyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: "invalid strategy id"}, c)
		return
	}

	results, err := m.BacktestService.ListResults(c.Request.Context(), strategyID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := make([]backtestResultResponse, 0, len(results))
	for i := range results {
		out = append(out, toResultResponse(&app.ResultState{
			Fingerprint: results[i].Fingerprint,
			State:       scheduler.State_Done,
			Result:      &results[i],
		}))
	}
	c.JSON(200, out)
}
