package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/sh-dot/machineinfo/cli/machineinfo/domain"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/response"
	"github.com/sh-dot/machineinfo/cli/machineinfo/types"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

const (
	headerUser      = "X-User-Email"
	headerRequestID = "X-Request-ID"
	keyRequestID    = "request_id"
)

type MachineInfoGetter interface {
	Run(ctx context.Context, q domain.MachineQuery) (reconcile.MachineInfo, error)
}

type CrossBorderAlertsGetter interface {
	Run(model, serial, orgID string) ([]response.CrossBorderAlert, error)
}

type Handler struct {
	MachineInfo       MachineInfoGetter
	CrossBorderAlerts CrossBorderAlertsGetter
}

func NewHandler(machineInfo MachineInfoGetter, crossBorderAlerts CrossBorderAlertsGetter) *Handler {
	return &Handler{MachineInfo: machineInfo, CrossBorderAlerts: crossBorderAlerts}
}

func (h *Handler) GetMachine(c *gin.Context) {
	view, err := types.ParseView(c.Query("view"))
	if err != nil {
		h.fail(c, err)
		return
	}

	info, err := h.MachineInfo.Run(c.Request.Context(), domain.MachineQuery{
		Model:     c.Param("model"),
		Serial:    c.Param("serial"),
		View:      view.Reconcile(),
		OrgID:     c.Query("org_id"),
		User:      c.GetHeader(headerUser),
		RequestID: c.GetString(keyRequestID),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *Handler) GetCrossBorderAlerts(c *gin.Context) {
	alerts, err := h.CrossBorderAlerts.Run(c.Param("model"), c.Param("serial"), c.Query("org_id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	requestID := c.GetString(keyRequestID)

	entry := log.WithFields(log.Fields{"request_id": requestID, "path": c.FullPath(), "status": status})
	if status >= http.StatusInternalServerError {
		entry.Errorf("Request failed: %v", err)
	} else {
		entry.Debugf("Request rejected: %v", err)
	}

	c.JSON(status, response.Error{Error: err.Error(), RequestID: requestID})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrMachineNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUnknownView),
		errors.Is(err, reconcile.ErrUnknownView),
		errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, reconcile.ErrViewMismatch):
		return http.StatusBadRequest
	case errors.Is(err, reconcile.ErrMalformedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
