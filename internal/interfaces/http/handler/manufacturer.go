package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ManufacturerHandler handles manufacturer-related API endpoints
type ManufacturerHandler struct {
	BaseHandler
	manufacturerService *catalogapp.ManufacturerService
}

// NewManufacturerHandler creates a new ManufacturerHandler
func NewManufacturerHandler(manufacturerService *catalogapp.ManufacturerService) *ManufacturerHandler {
	return &ManufacturerHandler{
		manufacturerService: manufacturerService,
	}
}

// Create godoc
// @Summary      Create a new manufacturer
// @Description  Create a new manufacturer in the catalog
// @Tags         manufacturers
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateManufacturerRequest true "Manufacturer creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturers [post]
func (h *ManufacturerHandler) Create(c *gin.Context) {
	var req catalogapp.CreateManufacturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	manufacturer, err := h.manufacturerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, manufacturer)
}

// GetByID godoc
// @Summary      Get a manufacturer by ID
// @Description  Retrieve a single manufacturer by its ID
// @Tags         manufacturers
// @Produce      json
// @Param        id path string true "Manufacturer ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturers/{id} [get]
func (h *ManufacturerHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manufacturer ID")
		return
	}

	manufacturer, err := h.manufacturerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, manufacturer)
}

// List godoc
// @Summary      List manufacturers
// @Description  Get a paginated list of manufacturers with optional filters
// @Tags         manufacturers
// @Produce      json
// @Param        search query string false "Search in name"
// @Param        country query string false "Filter by country"
// @Param        active query bool false "Filter by active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(name, country, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturers [get]
func (h *ManufacturerHandler) List(c *gin.Context) {
	var query ManufacturerListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := catalogapp.ManufacturerListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Search:   query.Search,
		Country:  query.Country,
		Active:   query.Active,
	}

	result, err := h.manufacturerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update a manufacturer
// @Description  Update a manufacturer's details
// @Tags         manufacturers
// @Accept       json
// @Produce      json
// @Param        id path string true "Manufacturer ID" format(uuid)
// @Param        request body catalogapp.UpdateManufacturerRequest true "Manufacturer update request"
// @Success      200 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturers/{id} [put]
func (h *ManufacturerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manufacturer ID")
		return
	}

	var req catalogapp.UpdateManufacturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	manufacturer, err := h.manufacturerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, manufacturer)
}

// Activate godoc
// @Summary      Activate a manufacturer
// @Description  Mark a manufacturer as active
// @Tags         manufacturers
// @Produce      json
// @Param        id path string true "Manufacturer ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturers/{id}/activate [post]
func (h *ManufacturerHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manufacturer ID")
		return
	}

	manufacturer, err := h.manufacturerService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, manufacturer)
}

// Deactivate godoc
// @Summary      Deactivate a manufacturer
// @Description  Mark a manufacturer as inactive. Products keep their reference.
// @Tags         manufacturers
// @Produce      json
// @Param        id path string true "Manufacturer ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturers/{id}/deactivate [post]
func (h *ManufacturerHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manufacturer ID")
		return
	}

	manufacturer, err := h.manufacturerService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, manufacturer)
}

// Delete godoc
// @Summary      Delete a manufacturer
// @Description  Delete a manufacturer. Blocked while any product references it.
// @Tags         manufacturers
// @Produce      json
// @Param        id path string true "Manufacturer ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturers/{id} [delete]
func (h *ManufacturerHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manufacturer ID")
		return
	}

	if err := h.manufacturerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Manufacturer deleted successfully"})
}
