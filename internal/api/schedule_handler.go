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

type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// --- DTOs ---

type CreateScheduleRequest struct {
	AthleteID  string    `json:"athleteId" binding:"required"`
	CategoryID string    `json:"categoryId" binding:"required"`
	TrainingID string    `json:"trainingId" binding:"required"`
	Date       time.Time `json:"date" binding:"required"` // ISO8601, e.g. "2025-06-01T17:00:00Z"
	Notes      string    `json:"notes"`
}

// UpdateScheduleRequest is a partial update; omitted fields stay unchanged.
// Status is deliberately absent: it only moves through the status endpoint.
type UpdateScheduleRequest struct {
	AthleteID  *string    `json:"athleteId"`
	CategoryID *string    `json:"categoryId"`
	TrainingID *string    `json:"trainingId"`
	Date       *time.Time `json:"date"`
	Notes      *string    `json:"notes"`
}

type UpdateScheduleStatusRequest struct {
	Status string `json:"status" binding:"required"` // pending|completed|cancelled
}

// ScheduleResponse is the plain (un-joined) schedule DTO.
type ScheduleResponse struct {
	ID         string    `json:"id"`
	AthleteID  string    `json:"athleteId"`
	CategoryID string    `json:"categoryId"`
	TrainingID string    `json:"trainingId"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EnrichedScheduleResponse adds the read-time athlete/category/training joins.
type EnrichedScheduleResponse struct {
	ScheduleResponse
	Athlete  service.AthleteSummary  `json:"athlete"`
	Category service.CategorySummary `json:"category"`
	Training service.TrainingSummary `json:"training"`
}

// MapScheduleToResponse converts domain.Schedule to ScheduleResponse DTO
func MapScheduleToResponse(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:         s.ID.Hex(),
		AthleteID:  s.AthleteID.Hex(),
		CategoryID: s.CategoryID.Hex(),
		TrainingID: s.TrainingID.Hex(),
		Date:       s.Date,
		Status:     string(s.Status),
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// MapEnrichedScheduleToResponse converts service.EnrichedSchedule to its DTO
func MapEnrichedScheduleToResponse(es *service.EnrichedSchedule) EnrichedScheduleResponse {
	if es == nil {
		return EnrichedScheduleResponse{}
	}
	return EnrichedScheduleResponse{
		ScheduleResponse: MapScheduleToResponse(&es.Schedule),
		Athlete:          es.Athlete,
		Category:         es.Category,
		Training:         es.Training,
	}
}

// MapEnrichedSchedulesToResponse converts a slice of service.EnrichedSchedule
func MapEnrichedSchedulesToResponse(schedules []service.EnrichedSchedule) []EnrichedScheduleResponse {
	responses := make([]EnrichedScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = MapEnrichedScheduleToResponse(&schedules[i])
	}
	return responses
}

// respondScheduleError maps service sentinel errors to HTTP status codes.
// Forbidden is never downgraded to NotFound; the two leak different
// information on purpose.
func respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound),
		errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrTrainingNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrScheduleAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrScheduleValidation),
		errors.Is(err, service.ErrAthleteNotRole),
		errors.Is(err, service.ErrInvalidScheduleStatus),
		errors.Is(err, service.ErrStatusTransitionDenied):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process schedule request.")
	}
}

// --- Handler Methods ---

// ListSchedules returns the actor's visible slice of the schedule collection.
// @Router /schedules [get]
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	schedules, err := h.scheduleService.ListSchedules(c.Request.Context(), actor)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	if schedules == nil {
		c.JSON(http.StatusOK, []EnrichedScheduleResponse{})
		return
	}
	c.JSON(http.StatusOK, MapEnrichedSchedulesToResponse(schedules))
}

// GetSchedule returns a single enriched schedule, 403 when visible to others
// only, 404 when the id does not exist.
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	scheduleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule ID format in URL path.")
		return
	}

	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), actor, scheduleID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapEnrichedScheduleToResponse(schedule))
}

// CreateSchedule creates a pending schedule. Admin/coach only (enforced by
// route middleware and re-checked in the service).
// @Router /schedules [post]
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	athleteID, err := primitive.ObjectIDFromHex(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid category ID format.")
		return
	}
	trainingID, err := primitive.ObjectIDFromHex(req.TrainingID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid training ID format.")
		return
	}

	schedule, err := h.scheduleService.CreateSchedule(c.Request.Context(), actor, service.CreateScheduleInput{
		AthleteID:  athleteID,
		CategoryID: categoryID,
		TrainingID: trainingID,
		Date:       req.Date,
		Notes:      req.Notes,
	})
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapScheduleToResponse(schedule))
}

// UpdateSchedule merges a partial patch into an existing schedule.
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	scheduleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule ID format in URL path.")
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := service.SchedulePatch{
		Date:  req.Date,
		Notes: req.Notes,
	}
	if req.AthleteID != nil {
		id, err := primitive.ObjectIDFromHex(*req.AthleteID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
			return
		}
		patch.AthleteID = &id
	}
	if req.CategoryID != nil {
		id, err := primitive.ObjectIDFromHex(*req.CategoryID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid category ID format.")
			return
		}
		patch.CategoryID = &id
	}
	if req.TrainingID != nil {
		id, err := primitive.ObjectIDFromHex(*req.TrainingID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid training ID format.")
			return
		}
		patch.TrainingID = &id
	}

	schedule, err := h.scheduleService.UpdateSchedule(c.Request.Context(), actor, scheduleID, patch)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapScheduleToResponse(schedule))
}

// UpdateScheduleStatus applies a status transition and returns the enriched
// schedule. Open to admins, coaches, and the owning athlete.
// @Router /schedules/{id}/status [patch]
func (h *ScheduleHandler) UpdateScheduleStatus(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	scheduleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule ID format in URL path.")
		return
	}

	var req UpdateScheduleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	schedule, err := h.scheduleService.UpdateScheduleStatus(
		c.Request.Context(),
		actor,
		scheduleID,
		domain.ScheduleStatus(req.Status),
	)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapEnrichedScheduleToResponse(schedule))
}

// DeleteSchedule removes a schedule. Admin/coach only.
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	scheduleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule ID format in URL path.")
		return
	}

	if err := h.scheduleService.DeleteSchedule(c.Request.Context(), actor, scheduleID); err != nil {
		respondScheduleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
