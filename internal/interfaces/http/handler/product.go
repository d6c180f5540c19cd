package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
)

// ImagesField is the multipart field carrying product images
const ImagesField = "images"

// ProductHandler handles the catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	maxImages      int
}

// NewProductHandler creates a new ProductHandler. maxImages bounds the number
// of files read from one upload request.
func NewProductHandler(productService *catalogapp.ProductService, maxImages int) *ProductHandler {
	if maxImages <= 0 {
		maxImages = catalogapp.DefaultProductServiceConfig().MaxImages
	}
	return &ProductHandler{
		productService: productService,
		maxImages:      maxImages,
	}
}

// List handles GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err, dto.ErrCodeInvalidQuery, "Invalid query parameters")
		return
	}
	// "?featured=" and "?minPrice=" mean no filter
	if c.Query("featured") == "" {
		query.Featured = nil
	}
	if c.Query("minPrice") == "" {
		query.MinPrice = nil
	}
	if c.Query("maxPrice") == "" {
		query.MaxPrice = nil
	}

	result, err := h.productService.ListProducts(c.Request.Context(), query.toRequest())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, result)
}

// Get handles GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, product)
}

// Featured handles GET /api/products/featured
func (h *ProductHandler) Featured(c *gin.Context) {
	products, err := h.productService.GetFeatured(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, products)
}

// ByCategory handles GET /api/products/category/:category
func (h *ProductHandler) ByCategory(c *gin.Context) {
	products, err := h.productService.GetByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, products)
}

// Create handles POST /api/products (multipart)
func (h *ProductHandler) Create(c *gin.Context) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid product form")
		return
	}
	req, err := form.toRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	files, closeFiles, err := h.openImages(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeFiles()

	product, err := h.productService.CreateProduct(c.Request.Context(), req, files)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update handles PUT /api/products/:id (multipart)
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	var form ProductPatchForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid product form")
		return
	}
	req, err := form.toRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	files, closeFiles, err := h.openImages(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeFiles()

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req, files)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, product)
}

// Delete handles DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.MessageResponse{Message: "Product deleted successfully"})
}

// DeleteImage handles DELETE /api/products/:id/images/:imageId
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	imageID, ok := h.pathID(c, "imageId", "image")
	if !ok {
		return
	}

	product, err := h.productService.DeleteProductImage(c.Request.Context(), id, imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, product)
}

// openImages opens the uploaded images. Requests that are not multipart
// carry no images. The returned func closes every opened file.
func (h *ProductHandler) openImages(c *gin.Context) ([]catalogapp.UploadFile, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, err
	}
	headers := form.File[ImagesField]
	if len(headers) > h.maxImages {
		// only the count matters here; the service reports the limit
		return make([]catalogapp.UploadFile, len(headers)), noop, nil
	}

	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]catalogapp.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, err
		}
		opened = append(opened, f)

		contentType, err := imageContentType(fh, f)
		if err != nil {
			closeAll()
			return nil, noop, err
		}
		files = append(files, catalogapp.UploadFile{
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}

// imageContentType trusts the part header unless it is missing or generic,
// in which case the first bytes are sniffed
func imageContentType(fh *multipart.FileHeader, f multipart.File) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
