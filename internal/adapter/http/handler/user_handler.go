package handler

import (
	"ledger-service/internal/adapter/http/dto"
	"ledger-service/internal/adapter/http/middleware"
	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"
	"ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles user registration, login, and profile endpoints.
type UserHandler struct {
	userSvc ports.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc ports.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register handles POST /users.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.userSvc.Register(c.Request.Context(), ports.RegisterUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toUserResponse(user))
}

// Login handles POST /users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  result.Token,
		Expiry: result.Expiry.Unix(),
		User:   toUserResponse(result.User),
	})
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid user id"))
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toUserResponse(user))
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	users, err := h.userSvc.List(c.Request.Context(), ports.Page{Number: q.Page, PerPage: q.PerPage})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	response.OK(c, resp)
}

// Update handles PUT /users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid user id"))
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.userSvc.Update(c.Request.Context(), callerID, id, ports.UpdateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toUserResponse(user))
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid user id"))
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), callerID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// authenticatedUserID pulls the caller's id set by the JWT middleware. A
// missing value means the route was wired outside the auth group.
func authenticatedUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return id, true
}

func toUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
