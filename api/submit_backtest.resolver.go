package api

import (
	"quantlab/internal/app"
	"quantlab/internal/domain"
	"quantlab/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type submitBacktestRequest struct {
	StrategyID string              `json:"strategyID" binding:"required"`
	Params     domain.ParamBinding `json:"params"`
	StartDate  string              `json:"startDate" binding:"required"`
	EndDate    string              `json:"endDate" binding:"required"`
}

type submitBacktestResponse struct {
	Fingerprint string `json:"fingerprint"`
}

func (m ApiHandler) submitBacktest(c *gin.Context) {
	var body submitBacktestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		returnErrorJson(&app.ValidationError{Detail: err.Error()}, c)
		return
	}

	strategyID, err := uuid.Parse(body.StrategyID)
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: "invalid strategyID"}, c)
		return
	}
	start, err := util.ParseDate(body.StartDate)
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: err.Error()}, c)
		return
	}
	end, err := util.ParseDate(body.EndDate)
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: err.Error()}, c)
		return
	}

	fingerprint, err := m.BacktestService.SubmitBacktest(c.Request.Context(), app.SubmitBacktestInput{
		StrategyID: strategyID,
		Params:     body.Params,
		Start:      start,
		End:        end,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, submitBacktestResponse{Fingerprint: fingerprint})
}
