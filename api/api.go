package api

import (
	"errors"
	"fmt"
	"quantlab/internal/app"
	"quantlab/internal/loader"
	"quantlab/internal/logger"
	"quantlab/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type ApiHandler struct {
	BacktestService app.BacktestService
	StrategyService app.StrategyService
}

func (m ApiHandler) StartApi(port int) error {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(loggerMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to quantlab"})
	})
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"status": "healthy"})
	})

	router.POST("/strategy", m.createStrategy)
	router.GET("/strategy/:id", m.getStrategy)
	router.GET("/strategies", m.listStrategies)
	router.PUT("/strategy/:id/source", m.updateStrategySource)
	router.POST("/strategy/:id/validate", m.validateStrategy)

	router.POST("/backtest", m.submitBacktest)
	router.GET("/backtest/:fingerprint", m.getResult)
	router.GET("/strategy/:id/backtests", m.listResults)

	return router.Run(fmt.Sprintf(":%d", port))
}

func loggerMiddleware(ctx *gin.Context) {
	ctx.Request = ctx.Request.WithContext(
		logger.AddToContext(ctx.Request.Context(), logger.New()),
	)
	ctx.Next()
}

// returnErrorJson maps the core's error taxonomy onto status codes:
// request-shape problems are 4xx, everything else 500.
func returnErrorJson(err error, c *gin.Context) {
	var validationErr *app.ValidationError
	var loadErr *loader.LoadError

	code := 500
	switch {
	case errors.As(err, &validationErr):
		code = 400
	case errors.As(err, &loadErr):
		code = 422
	case errors.Is(err, repository.ErrNotFound):
		code = 404
	}

	logger.FromContext(c.Request.Context()).Warnw("request failed",
		"path", c.FullPath(), "status", code, "error", err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}
