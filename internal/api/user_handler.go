package api

import (
	"errors"
	"fitcoach/coaching-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListAthletes returns the athletes the actor may schedule for: every athlete
// for an admin, the supervised set for a coach.
// @Router /users/athletes [get]
func (h *UserHandler) ListAthletes(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	athletes, err := h.userService.ListAthletes(c.Request.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrUserAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to list athletes.")
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(athletes))
}
