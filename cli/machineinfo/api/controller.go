package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/response"
)

const headerApiKey = "X-API-Key"

type Controller struct {
	Handler *Handler
	router  *gin.Engine
}

// NewController routes the handler. With a non-empty key list every machine
// route requires one of the keys in X-API-Key.
func NewController(handler *Handler, apiKeys []string, gatherer prometheus.Gatherer) (*Controller, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is nil")
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	router.GET("/health", handler.Health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	machines := router.Group("/machines")
	if len(apiKeys) > 0 {
		machines.Use(requireApiKey(apiKeys))
	}
	{
		machines.GET("/:model/:serial", handler.GetMachine)
		machines.GET("/:model/:serial/alerts/cross-border", handler.GetCrossBorderAlerts)
	}

	return &Controller{Handler: handler, router: router}, nil
}

func (c *Controller) Router() http.Handler {
	return c.router
}

func (c *Controller) Run(port int32) error {
	return c.router.Run(fmt.Sprintf(":%d", port))
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(keyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requireApiKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := []byte(c.GetHeader(headerApiKey))
		for _, key := range keys {
			if subtle.ConstantTimeCompare(given, []byte(key)) == 1 {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error{
			Error:     "invalid api key",
			RequestID: c.GetString(keyRequestID),
		})
	}
}
