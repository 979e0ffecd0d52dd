package api

import (
	"quantlab/internal/app"
	"quantlab/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createStrategyRequest struct {
	OwnerID     string             `json:"ownerID" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Source      string             `json:"source" binding:"required"`
	ParamSchema domain.ParamSchema `json:"paramSchema"`
}

type strategyResponse struct {
	StrategyID  string             `json:"strategyID"`
	OwnerID     string             `json:"ownerID"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Source      string             `json:"source"`
	ParamSchema domain.ParamSchema `json:"paramSchema"`
	Status      string             `json:"status"`
	ContentHash string             `json:"contentHash"`
	CreatedAt   string             `json:"createdAt"`
}

func toStrategyResponse(s *domain.Strategy) strategyResponse {
	return strategyResponse{
		StrategyID:  s.StrategyID.String(),
		OwnerID:     s.OwnerID.String(),
		Name:        s.Name,
		Description: s.Description,
		Source:      s.Source,
		ParamSchema: s.ParamSchema,
		Status:      string(s.Status),
		ContentHash: s.ContentHash,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func (m ApiHandler) createStrategy(c *gin.Context) {
	var body createStrategyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		returnErrorJson(&app.ValidationError{Detail: err.Error()}, c)
		return
	}

	ownerID, err := uuid.Parse(body.OwnerID)
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: "invalid ownerID"}, c)
		return
	}

	created, err := m.StrategyService.Create(c.Request.Context(), domain.Strategy{
		StrategyID:  uuid.New(),
		OwnerID:     ownerID,
		Name:        body.Name,
		Description: body.Description,
		Source:      body.Source,
		ParamSchema: body.ParamSchema,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, toStrategyResponse(created))
}

func (m ApiHandler) getStrategy(c *gin.Context) {
	strategyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: "invalid strategy id"}, c)
		return
	}

	strategy, err := m.StrategyService.Get(c.Request.Context(), strategyID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, toStrategyResponse(strategy))
}

func (m ApiHandler) listStrategies(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Query("ownerID"))
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: "invalid ownerID"}, c)
		return
	}

	strategies, err := m.StrategyService.List(c.Request.Context(), ownerID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := make([]strategyResponse, 0, len(strategies))
	for i := range strategies {
		out = append(out, toStrategyResponse(&strategies[i]))
	}
	c.JSON(200, out)
}

type updateSourceRequest struct {
	Source string `json:"source" binding:"required"`
}

func (m ApiHandler) updateStrategySource(c *gin.Context) {
	strategyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: "invalid strategy id"}, c)
		return
	}

	var body updateSourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		returnErrorJson(&app.ValidationError{Detail: err.Error()}, c)
		return
	}

	updated, err := m.StrategyService.UpdateSource(c.Request.Context(), strategyID, body.Source)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, toStrategyResponse(updated))
}

func (m ApiHandler) validateStrategy(c *gin.Context) {
	strategyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJson(&app.ValidationError{Detail: "invalid strategy id"}, c)
		return
	}

	validated, err := m.StrategyService.Validate(c.Request.Context(), strategyID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, toStrategyResponse(validated))
}
