package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodian-app/upkeep/internal/middleware"
	"github.com/custodian-app/upkeep/internal/modules/serializer"
	"github.com/custodian-app/upkeep/internal/modules/service"
)

type CalendarHandler struct {
	svc service.CalendarService
}

func NewCalendarHandler(s service.CalendarService) *CalendarHandler {
	return &CalendarHandler{svc: s}
}

// TaskICS godoc
//
//	@Summary		Download a task as an iCalendar file
//	@Description	Renders the task as a recurring Saturday event in the caller's timezone.
//	@Tags			calendar
//	@Produce		text/calendar
//	@Param			asset_id	path	string	true	"Asset ID"	format(uuid)
//	@Param			task_id		path	string	true	"Task ID"	format(uuid)
//	@Param			tz			query	string	false	"IANA timezone, e.g. America/Los_Angeles"
//	@Security		BearerAuth
//	@Success		200	{string}	string	"ICS document"
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/assets/{asset_id}/tasks/{task_id}/ics [get]
func (h *CalendarHandler) TaskICS(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset_id", err))
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid task_id", err))
		return
	}

	file, err := h.svc.BuildTaskICS(c.Request.Context(), uid, assetID, taskID, c.Query("tz"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr(""))
		case errors.Is(err, service.ErrMissingTimezone),
			errors.Is(err, service.ErrInvalidTimezone):
			c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), err))
		default:
			c.JSON(http.StatusInternalServerError,
				serializer.Err(http.StatusInternalServerError, "failed to build calendar", err))
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(file.Body))
}
