package api

import (
	"errors"
	"net/http"
	"time"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler holds the catalog service dependency.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs ---

// CreateFormationRequest defines the expected JSON for creating a formation.
type CreateFormationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// FormationResponse is the DTO for returning formation details.
type FormationResponse struct {
	ID          string    `json:"id"`
	SupplierID  string    `json:"supplierId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateModuleRequest defines the expected JSON for creating a course module.
type CreateModuleRequest struct {
	Title string `json:"title" binding:"required"`
}

// ModuleResponse is the DTO for returning course module details.
type ModuleResponse struct {
	ID          string    `json:"id"`
	FormationID string    `json:"formationId"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MapFormationToResponse converts a domain.Formation to FormationResponse DTO.
func MapFormationToResponse(f *domain.Formation) FormationResponse {
	if f == nil {
		return FormationResponse{}
	}
	return FormationResponse{
		ID:          f.ID.Hex(),
		SupplierID:  f.SupplierID.Hex(),
		Name:        f.Name,
		Description: f.Description,
		IsPublished: f.IsPublished,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// MapModuleToResponse converts a domain.CourseModule to ModuleResponse DTO.
func MapModuleToResponse(m *domain.CourseModule) ModuleResponse {
	if m == nil {
		return ModuleResponse{}
	}
	return ModuleResponse{
		ID:          m.ID.Hex(),
		FormationID: m.FormationID.Hex(),
		Title:       m.Title,
		Position:    m.Position,
		CreatedAt:   m.CreatedAt,
	}
}

// --- Handler Methods ---

// CreateFormation handles POST /supplier/formations.
func (h *CatalogHandler) CreateFormation(c *gin.Context) {
	supplierID, ok := supplierIDFromContext(c)
	if !ok {
		return
	}

	var req CreateFormationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	formation, err := h.catalogService.CreateFormation(c.Request.Context(), supplierID, req.Name, req.Description)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create formation.")
		return
	}

	c.JSON(http.StatusCreated, MapFormationToResponse(formation))
}

// GetFormations handles GET /supplier/formations.
func (h *CatalogHandler) GetFormations(c *gin.Context) {
	supplierID, ok := supplierIDFromContext(c)
	if !ok {
		return
	}

	formations, err := h.catalogService.GetFormationsBySupplier(c.Request.Context(), supplierID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve formations.")
		return
	}

	responses := make([]FormationResponse, len(formations))
	for i := range formations {
		responses[i] = MapFormationToResponse(&formations[i])
	}
	c.JSON(http.StatusOK, responses)
}

// CreateModule handles POST /supplier/formations/:formationId/modules.
func (h *CatalogHandler) CreateModule(c *gin.Context) {
	supplierID, ok := supplierIDFromContext(c)
	if !ok {
		return
	}

	formationID, err := primitive.ObjectIDFromHex(c.Param("formationId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid formation ID.")
		return
	}

	var req CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	module, err := h.catalogService.CreateModule(c.Request.Context(), supplierID, formationID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFormationNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrFormationAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create module.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapModuleToResponse(module))
}

// GetModules handles GET /supplier/formations/:formationId/modules.
func (h *CatalogHandler) GetModules(c *gin.Context) {
	supplierID, ok := supplierIDFromContext(c)
	if !ok {
		return
	}

	formationID, err := primitive.ObjectIDFromHex(c.Param("formationId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid formation ID.")
		return
	}

	modules, err := h.catalogService.GetModulesForFormation(c.Request.Context(), supplierID, formationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFormationNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrFormationAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve modules.")
		}
		return
	}

	responses := make([]ModuleResponse, len(modules))
	for i := range modules {
		responses[i] = MapModuleToResponse(&modules[i])
	}
	c.JSON(http.StatusOK, responses)
}

// supplierIDFromContext resolves the authenticated supplier's ObjectID,
// writing the error response itself when resolution fails.
func supplierIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify supplier from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid supplier ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
