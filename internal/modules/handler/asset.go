package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodian-app/upkeep/internal/middleware"
	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/custodian-app/upkeep/internal/modules/serializer"
	"github.com/custodian-app/upkeep/internal/modules/service"
)

type AssetHandler struct {
	svc service.AssetService
}

func NewAssetHandler(s service.AssetService) *AssetHandler {
	return &AssetHandler{svc: s}
}

type CreateAssetReq struct {
	Name          string     `json:"name" binding:"required" example:"Furnace"`
	Description   string     `json:"description"`
	Status        string     `json:"status" binding:"omitempty,oneof=active inactive maintenance disposed"`
	Type          string     `json:"type" example:"appliance"`
	SubType       string     `json:"subtype" example:"hvac"`
	Brand         string     `json:"brand" example:"Carrier"`
	Model         string     `json:"model"`
	ModelNumber   string     `json:"model_number" example:"59TP6B"`
	SerialNumber  string     `json:"serial_number"`
	Condition     string     `json:"condition" example:"good"`
	Location      string     `json:"location" example:"basement"`
	Year          string     `json:"year" example:"2019"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	InServiceDate *time.Time `json:"in_service_date"`
	Value         *float64   `json:"value"`
}

type UpdateAssetReq struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status" binding:"omitempty,oneof=active inactive maintenance disposed"`
	Type          *string    `json:"type"`
	SubType       *string    `json:"subtype"`
	Brand         *string    `json:"brand"`
	Model         *string    `json:"model"`
	ModelNumber   *string    `json:"model_number"`
	SerialNumber  *string    `json:"serial_number"`
	Condition     *string    `json:"condition"`
	Location      *string    `json:"location"`
	Year          *string    `json:"year"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	InServiceDate *time.Time `json:"in_service_date"`
	Value         *float64   `json:"value"`
}

// ListAssets godoc
//
//	@Summary	List the user's assets
//	@Tags		asset
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.Asset}
//	@Router		/assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	items, err := h.svc.List(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// CreateAsset godoc
//
//	@Summary	Create an asset
//	@Tags		asset
//	@Accept		json
//	@Produce	json
//	@Param		body	body	CreateAssetReq	true	"Asset payload"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Asset}
//	@Router		/assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	var req CreateAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	a := &model.Asset{
		UserID:        uid,
		Name:          req.Name,
		Description:   req.Description,
		Type:          req.Type,
		SubType:       req.SubType,
		Brand:         req.Brand,
		Model:         req.Model,
		ModelNumber:   req.ModelNumber,
		SerialNumber:  req.SerialNumber,
		Condition:     req.Condition,
		Location:      req.Location,
		Year:          req.Year,
		PurchaseDate:  req.PurchaseDate,
		InServiceDate: req.InServiceDate,
		Value:         req.Value,
	}
	if req.Status != "" {
		a.Status = req.Status
	}
	if err := h.svc.Create(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: a})
}

// GetAsset godoc
//
//	@Summary	Get one asset
//	@Tags		asset
//	@Produce	json
//	@Param		asset_id	path	string	true	"Asset ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Asset}
//	@Failure	404	{object}	serializer.Response
//	@Router		/assets/{asset_id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	uid, assetID, ok := h.scope(c)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), uid, assetID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: a})
}

// UpdateAsset godoc
//
//	@Summary	Update an asset
//	@Description	Partial update: absent fields are left untouched.
//	@Tags		asset
//	@Accept		json
//	@Produce	json
//	@Param		asset_id	path	string			true	"Asset ID"	format(uuid)
//	@Param		body		body	UpdateAssetReq	true	"Fields to change"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Asset}
//	@Failure	404	{object}	serializer.Response
//	@Router		/assets/{asset_id} [patch]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	uid, assetID, ok := h.scope(c)
	if !ok {
		return
	}
	var req UpdateAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	a, err := h.svc.Update(c.Request.Context(), uid, assetID, service.UpdateAssetInput{
		Status:        req.Status,
		Name:          req.Name,
		Description:   req.Description,
		Type:          req.Type,
		SubType:       req.SubType,
		Brand:         req.Brand,
		Model:         req.Model,
		ModelNumber:   req.ModelNumber,
		SerialNumber:  req.SerialNumber,
		Condition:     req.Condition,
		Location:      req.Location,
		Year:          req.Year,
		PurchaseDate:  req.PurchaseDate,
		InServiceDate: req.InServiceDate,
		Value:         req.Value,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: a})
}

// DeleteAsset godoc
//
//	@Summary	Delete an asset and its tasks
//	@Tags		asset
//	@Produce	json
//	@Param		asset_id	path	string	true	"Asset ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response
//	@Failure	404	{object}	serializer.Response
//	@Router		/assets/{asset_id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	uid, assetID, ok := h.scope(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), uid, assetID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// UploadImage godoc
//
//	@Summary	Upload an asset photo
//	@Tags		asset
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		asset_id	path		string	true	"Asset ID"	format(uuid)
//	@Param		file		formData	file	true	"Image file"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Asset}
//	@Failure	404	{object}	serializer.Response
//	@Router		/assets/{asset_id}/image [post]
func (h *AssetHandler) UploadImage(c *gin.Context) {
	uid, assetID, ok := h.scope(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}
	a, err := h.svc.AttachImage(c.Request.Context(), uid, assetID, fh)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: a})
}

// ImageURL godoc
//
//	@Summary	Get a presigned URL for the asset photo
//	@Tags		asset
//	@Produce	json
//	@Param		asset_id	path	string	true	"Asset ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=string}
//	@Failure	404	{object}	serializer.Response
//	@Router		/assets/{asset_id}/image_url [get]
func (h *AssetHandler) ImageURL(c *gin.Context) {
	uid, assetID, ok := h.scope(c)
	if !ok {
		return
	}
	url, err := h.svc.ImageURL(c.Request.Context(), uid, assetID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: url})
}

// scope extracts the authenticated user and the asset_id path param.
func (h *AssetHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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

func (h *AssetHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(""))
		return
	}
	c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
}
