package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ImageHandler handles product image upload and management endpoints
type ImageHandler struct {
	BaseHandler
	imageService *catalogapp.ImageService
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(imageService *catalogapp.ImageService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
	}
}

// uploadedByFromContext reads the caller's user ID from the JWT context.
// Uploads are attributed when a token is present.
func uploadedByFromContext(c *gin.Context) *uuid.UUID {
	userID, err := getUserID(c)
	if err != nil || userID == uuid.Nil {
		return nil
	}
	return &userID
}

// InitiateUpload godoc
// @Summary      Initiate an image upload
// @Description  Creates a pending image record and returns a presigned upload URL
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.InitiateUploadRequest true "Upload initiation request"
// @Success      201 {object} dto.Response{data=catalogapp.InitiateUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo} "Product not found"
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "Image limit exceeded or disallowed content type"
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /images/upload [post]
func (h *ImageHandler) InitiateUpload(c *gin.Context) {
	var req catalogapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.imageService.InitiateUpload(c.Request.Context(), req, uploadedByFromContext(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// ConfirmUpload godoc
// @Summary      Confirm an image upload
// @Description  Verifies the object landed in storage and activates the image
// @Tags         images
// @Produce      json
// @Param        id path string true "Image ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "Upload not completed"
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /images/{id}/confirm [post]
func (h *ImageHandler) ConfirmUpload(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	image, err := h.imageService.ConfirmUpload(c.Request.Context(), imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, image)
}

// DirectUpload godoc
// @Summary      Upload an image through the API
// @Description  Accepts multipart file content for clients that cannot upload to object storage directly
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Param        product_id formData string true "Product ID" format(uuid)
// @Param        file formData file true "Image file"
// @Success      201 {object} dto.Response{data=catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo} "Product not found"
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /images [post]
func (h *ImageHandler) DirectUpload(c *gin.Context) {
	productID, err := uuid.Parse(c.PostForm("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	// Get file from form
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Failed to read file content")
		return
	}

	req := catalogapp.DirectUploadRequest{
		ProductID:   productID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	image, err := h.imageService.DirectUpload(c.Request.Context(), req, uploadedByFromContext(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, image)
}

// GetByID godoc
// @Summary      Get an image by ID
// @Description  Retrieve a single image record, including a download URL when available
// @Tags         images
// @Produce      json
// @Param        id path string true "Image ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /images/{id} [get]
func (h *ImageHandler) GetByID(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	image, err := h.imageService.GetByID(c.Request.Context(), imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, image)
}

// ListByProduct godoc
// @Summary      List a product's images
// @Description  Returns a product's active images in display order
// @Tags         images
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/images [get]
func (h *ImageHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	images, err := h.imageService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, images)
}

// Reorder godoc
// @Summary      Reorder a product's images
// @Description  Sets the display order of a product's images. All active image IDs must be listed.
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ReorderImagesRequest true "Image IDs in desired order"
// @Success      200 {object} dto.Response{data=[]catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "ID list does not match the product's images"
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/images/reorder [put]
func (h *ImageHandler) Reorder(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req catalogapp.ReorderImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	images, err := h.imageService.Reorder(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, images)
}

// Delete godoc
// @Summary      Delete an image
// @Description  Removes the image record and its stored object
// @Tags         images
// @Produce      json
// @Param        id path string true "Image ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /images/{id} [delete]
func (h *ImageHandler) Delete(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), imageID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Image deleted successfully"})
}
