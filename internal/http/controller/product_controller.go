package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-console/internal/analytics"
	"github.com/iyhunko/inventory-console/internal/filter"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/service"
)

// ProductRequest represents the request body for creating or updating a product.
type ProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Description string   `json:"description" binding:"required"`
	Image       string   `json:"image" binding:"omitempty,url"`
}

func (r ProductRequest) draft() model.Draft {
	return model.Draft{
		Name:        r.Name,
		Category:    r.Category,
		Price:       *r.Price,
		Description: r.Description,
		Image:       r.Image,
	}
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
}

// MutationResponse is returned once a mutation has been applied locally.
type MutationResponse struct {
	Product  *model.Product       `json:"product,omitempty"`
	Mutation service.MutationInfo `json:"mutation"`
}

// ListProducts handles the HTTP GET request for the filtered catalog.
func (con *Controller) ListProducts(c *gin.Context) {
	var criteria filter.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot := con.engine.Snapshot()
	c.JSON(http.StatusOK, ListProductsResponse{
		Products: filter.Apply(snapshot, criteria),
		Total:    snapshot.Len(),
	})
}

// ListCategories handles the HTTP GET request for the distinct categories.
func (con *Controller) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": analytics.Categories(con.engine.Snapshot())})
}

// Reload replaces the catalog with the remote one.
func (con *Controller) Reload(c *gin.Context) {
	result, err := con.engine.Load(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	skipped := make([]string, 0, len(result.Skipped))
	for _, e := range result.Skipped {
		skipped = append(skipped, e.Error())
	}
	c.JSON(http.StatusOK, gin.H{"loaded": result.Loaded, "skipped": skipped})
}

// CreateProduct handles the HTTP POST request for creating a product. The product is returned
// with its pending id; the remote outcome is reported through /mutations and /notifications.
func (con *Controller) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := con.engine.Create(c.Request.Context(), req.draft())
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondAccepted(c, m)
}

// UpdateProduct handles the HTTP PUT request for updating a product.
func (con *Controller) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := con.engine.Update(c.Request.Context(), model.ID(c.Param("id")), req.draft())
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondAccepted(c, m)
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (con *Controller) DeleteProduct(c *gin.Context) {
	m, err := con.engine.Delete(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondAccepted(c, m)
}

func respondAccepted(c *gin.Context, m *service.Mutation) {
	resp := MutationResponse{Mutation: m.Info()}
	if m.Kind() != service.KindDelete && m.Status() != service.StatusQueued {
		p := m.Product()
		resp.Product = &p
	}
	c.JSON(http.StatusAccepted, resp)
}

// ListMutations returns the mutations still waiting for the remote catalog.
func (con *Controller) ListMutations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mutations": con.engine.InFlight()})
}

// Analytics returns the figures of the current catalog.
func (con *Controller) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, analytics.Summarize(con.engine.Snapshot()))
}
