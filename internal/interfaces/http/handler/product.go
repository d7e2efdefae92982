package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
)

// Product form fields
const (
	productFieldName        = "name"
	productFieldPrice       = "price"
	productFieldDescription = "description"
	productFieldGender      = "gender"
)

// ProductHandler manages the product catalog. Create and update take
// multipart forms so the image can travel with the fields.
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	maxUploadSize  int64
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalogapp.ProductService, maxUploadSize int64) *ProductHandler {
	return &ProductHandler{productService: productService, maxUploadSize: maxUploadSize}
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search query string false "Name contains"
// @Param        gender query string false "Men or Women"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationFailed(c, err)
		return
	}
	products, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Get godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        name formData string true "Name"
// @Param        price formData string true "Price"
// @Param        description formData string false "Description"
// @Param        gender formData string true "Men or Women"
// @Param        image formData file true "Product image"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	price, err := parseDecimal(productFieldPrice, c.PostForm(productFieldPrice))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req := catalogapp.CreateProductRequest{
		Name:        c.PostForm(productFieldName),
		Price:       price,
		Description: c.PostForm(productFieldDescription),
		Gender:      c.PostForm(productFieldGender),
	}

	image, closeImage, err := openImage(c, ImageField, h.maxUploadSize)
	if err != nil && !errors.Is(err, errNoImage) {
		h.HandleError(c, err)
		return
	}
	if closeImage != nil {
		defer closeImage()
	}

	product, err := h.productService.Create(c.Request.Context(), req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Only the fields present in the form change. A new image replaces the current one.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        name formData string false "Name"
// @Param        price formData string false "Price"
// @Param        description formData string false "Description"
// @Param        gender formData string false "Men or Women"
// @Param        image formData file false "Product image"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	req := catalogapp.UpdateProductRequest{
		Name:        optionalForm(c, productFieldName),
		Description: optionalForm(c, productFieldDescription),
		Gender:      optionalForm(c, productFieldGender),
	}
	if raw := optionalForm(c, productFieldPrice); raw != nil {
		price, err := parseDecimal(productFieldPrice, *raw)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		req.Price = &price
	}

	var image *catalogapp.Image
	img, closeImage, err := openImage(c, ImageField, h.maxUploadSize)
	switch {
	case errors.Is(err, errNoImage):
	case err != nil:
		h.HandleError(c, err)
		return
	default:
		image = img
		defer closeImage()
	}

	product, err := h.productService.Update(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Product deleted")
}

