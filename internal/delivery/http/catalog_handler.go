package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/usecase"
)

// SearchProducts runs a keyword search through the filter pipeline.
func (h *Handler) SearchProducts(c *gin.Context) {
	var opts usecase.SearchOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		h.badRequest(c, err)
		return
	}

	out, err := h.catalog.Search(c.Request.Context(), opts)
	if err != nil {
		h.fail(c, err)
		return
	}

	body := gin.H{
		"keyword":  out.Keyword,
		"total":    out.Total,
		"fetched":  out.Fetched,
		"count":    len(out.Products),
		"products": out.Products,
		"stages":   out.Stages,
	}
	if out.Enrichment != nil {
		body["enrichment"] = out.Enrichment
	}
	if opts.Save {
		body["saved"] = out.Saved
		if out.SaveError != nil {
			body["save_error"] = out.SaveError.Error()
		}
	}
	c.JSON(http.StatusOK, body)
}

// Categories returns the category facets of a search.
func (h *Handler) Categories(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	facets, err := h.catalog.Categories(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}

// ProductDetail returns one product's detail document.
func (h *Handler) ProductDetail(c *gin.Context) {
	detail, err := h.catalog.Detail(c.Request.Context(), c.Query("shop_type"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type imageSearchRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// ImageSearch looks up the image id of an uploaded image.
func (h *Handler) ImageSearch(c *gin.Context) {
	var req imageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.catalog.ImageID(c.Request.Context(), req.ImageBase64)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Logistics lists the available carriers.
func (h *Handler) Logistics(c *gin.Context) {
	list, err := h.catalog.Logistics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logistics": list})
}

// Tags lists the labelling options.
func (h *Handler) Tags(c *gin.Context) {
	tags, err := h.catalog.Tags(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
