package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-teachers-api/internal/dto"
	appErrors "github.com/noah-isme/school-teachers-api/pkg/errors"
	"github.com/noah-isme/school-teachers-api/pkg/response"
)

type authenticator interface {
	Authenticate(ctx context.Context, req dto.AuthenticationRequest) (*dto.AuthenticationResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authenticator
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authenticator) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Authenticate godoc
// @Summary Authenticate user
// @Description Exchange username and password for a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.AuthenticationRequest true "Credentials"
// @Success 200 {object} dto.AuthenticationResponse
// @Failure 400 {object} appErrors.Error
// @Failure 401 {object} appErrors.Error
// @Failure 429 {object} appErrors.Error
// @Router /auth/authenticate [post]
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req dto.AuthenticationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid authentication payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Authenticate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}
