package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodian-app/upkeep/internal/middleware"
	"github.com/custodian-app/upkeep/internal/modules/serializer"
	"github.com/custodian-app/upkeep/internal/modules/service"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(s service.TaskService) *TaskHandler {
	return &TaskHandler{svc: s}
}

type GenerateTasksReq struct {
	Prompt string `json:"prompt" example:"Focus on seasonal maintenance."`
}

// ListTasks godoc
//
//	@Summary	List the asset's maintenance tasks
//	@Tags		task
//	@Produce	json
//	@Param		asset_id	path	string	true	"Asset ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=service.TaskListOutput}
//	@Failure	404	{object}	serializer.Response
//	@Router		/assets/{asset_id}/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	uid, assetID, ok := taskScope(c)
	if !ok {
		return
	}
	out, err := h.svc.ListForAsset(c.Request.Context(), uid, assetID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr(""))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GenerateTasks godoc
//
//	@Summary		Generate the asset's maintenance task plan
//	@Description	Returns the cached plan when the asset and prompt are unchanged. A concurrent generation yields 202; a failed model call yields 502.
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			asset_id	path	string				true	"Asset ID"	format(uuid)
//	@Param			body		body	GenerateTasksReq	false	"Optional prompt"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.GenerateResult}
//	@Failure		202	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Failure		502	{object}	serializer.Response
//	@Router			/assets/{asset_id}/tasks/generate [post]
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	uid, assetID, ok := taskScope(c)
	if !ok {
		return
	}
	var req GenerateTasksReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
			return
		}
	}

	res, err := h.svc.Generate(c.Request.Context(), uid, assetID, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr(""))
		case errors.Is(err, service.ErrGenerationInProgress):
			c.JSON(http.StatusAccepted,
				serializer.Err(http.StatusAccepted, "tasks generation in progress", nil))
		case errors.Is(err, service.ErrGeneration):
			c.JSON(http.StatusBadGateway,
				serializer.Err(http.StatusBadGateway, "failed to generate tasks", err))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: res})
}

func taskScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return uuid.Nil, uuid.Nil, false
	}
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset_id", err))
		return uuid.Nil, uuid.Nil, false
	}
	return uid, assetID, true
}
