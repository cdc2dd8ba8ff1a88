package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/export"
)

// DatasheetHandler serves rendered product datasheets
type DatasheetHandler struct {
	BaseHandler
	datasheetService *export.DatasheetService
}

// NewDatasheetHandler creates a new DatasheetHandler
func NewDatasheetHandler(datasheetService *export.DatasheetService) *DatasheetHandler {
	return &DatasheetHandler{
		datasheetService: datasheetService,
	}
}

// Export godoc
// @Summary      Download a product datasheet
// @Description  Renders the product as a PDF datasheet. Falls back to HTML when no PDF renderer is available.
// @Tags         products
// @Produce      application/pdf
// @Produce      html
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {file} file "Rendered datasheet"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/sheet [get]
func (h *DatasheetHandler) Export(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	doc, err := h.datasheetService.Export(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+doc.FileName+"\"")
	c.Header("Content-Length", strconv.Itoa(len(doc.Data)))
	if doc.PageCount > 0 {
		c.Header("X-Page-Count", strconv.Itoa(doc.PageCount))
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
