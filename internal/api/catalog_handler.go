package api

import (
	"errors"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs ---

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TrainingRequest struct {
	CategoryID  string `json:"categoryId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type TrainingResponse struct {
	ID               string    `json:"id"`
	CategoryID       string    `json:"categoryId"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	MediaContentType string    `json:"mediaContentType,omitempty"`
	HasMedia         bool      `json:"hasMedia"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type MediaUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MediaURLResponse struct {
	URL string `json:"url"`
}

func MapCategoryToResponse(cat *domain.Category) CategoryResponse {
	if cat == nil {
		return CategoryResponse{}
	}
	return CategoryResponse{
		ID:          cat.ID.Hex(),
		Name:        cat.Name,
		Description: cat.Description,
		CreatedAt:   cat.CreatedAt,
		UpdatedAt:   cat.UpdatedAt,
	}
}

func MapCategoriesToResponse(cats []domain.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(cats))
	for i := range cats {
		responses[i] = MapCategoryToResponse(&cats[i])
	}
	return responses
}

func MapTrainingToResponse(t *domain.Training) TrainingResponse {
	if t == nil {
		return TrainingResponse{}
	}
	return TrainingResponse{
		ID:               t.ID.Hex(),
		CategoryID:       t.CategoryID.Hex(),
		Name:             t.Name,
		Description:      t.Description,
		MediaContentType: t.MediaContentType,
		HasMedia:         t.MediaObjectKey != "",
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func MapTrainingsToResponse(trainings []domain.Training) []TrainingResponse {
	responses := make([]TrainingResponse, len(trainings))
	for i := range trainings {
		responses[i] = MapTrainingToResponse(&trainings[i])
	}
	return responses
}

func respondCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrTrainingNotFound),
		errors.Is(err, service.ErrTrainingMediaNotAttached):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCatalogAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCategoryValidation),
		errors.Is(err, service.ErrTrainingValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process catalog request.")
	}
}

// --- Category Handlers ---

// CreateCategory
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), actor, req.Name, req.Description)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapCategoryToResponse(category))
}

// ListCategories
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapCategoriesToResponse(categories))
}

// UpdateCategory
// @Router /categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid category ID format in URL path.")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), actor, categoryID, req.Name, req.Description)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapCategoryToResponse(category))
}

// DeleteCategory
// @Router /categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid category ID format in URL path.")
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), actor, categoryID); err != nil {
		respondCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Training Handlers ---

// CreateTraining
// @Router /trainings [post]
func (h *CatalogHandler) CreateTraining(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid category ID format.")
		return
	}

	training, err := h.catalogService.CreateTraining(c.Request.Context(), actor, categoryID, req.Name, req.Description)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTrainingToResponse(training))
}

// ListTrainings supports optional filtering by ?categoryId=<hex>.
// @Router /trainings [get]
func (h *CatalogHandler) ListTrainings(c *gin.Context) {
	var categoryID *primitive.ObjectID
	if raw := c.Query("categoryId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid category ID format in query.")
			return
		}
		categoryID = &id
	}

	trainings, err := h.catalogService.GetTrainings(c.Request.Context(), categoryID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingsToResponse(trainings))
}

// UpdateTraining
// @Router /trainings/{id} [put]
func (h *CatalogHandler) UpdateTraining(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	trainingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid training ID format in URL path.")
		return
	}

	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid category ID format.")
		return
	}

	training, err := h.catalogService.UpdateTraining(c.Request.Context(), actor, trainingID, categoryID, req.Name, req.Description)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingToResponse(training))
}

// DeleteTraining
// @Router /trainings/{id} [delete]
func (h *CatalogHandler) DeleteTraining(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	trainingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid training ID format in URL path.")
		return
	}

	if err := h.catalogService.DeleteTraining(c.Request.Context(), actor, trainingID); err != nil {
		respondCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Training Media Handlers ---

// GenerateMediaUploadURL returns a presigned PUT URL for a training's demo media.
// @Router /trainings/{id}/media/upload-url [post]
func (h *CatalogHandler) GenerateMediaUploadURL(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	trainingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid training ID format in URL path.")
		return
	}

	var req MediaUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	url, err := h.catalogService.GenerateTrainingMediaUploadURL(c.Request.Context(), actor, trainingID, req.ContentType)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MediaURLResponse{URL: url})
}

// GetMediaDownloadURL returns a presigned GET URL for a training's demo media.
// @Router /trainings/{id}/media/download-url [get]
func (h *CatalogHandler) GetMediaDownloadURL(c *gin.Context) {
	trainingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid training ID format in URL path.")
		return
	}

	url, err := h.catalogService.GetTrainingMediaDownloadURL(c.Request.Context(), trainingID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MediaURLResponse{URL: url})
}
