package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"leave-sync/internal/models"
	"leave-sync/pkg/jwt"
	"leave-sync/pkg/utils"
)

type Handler struct {
	store     *Store
	jwtUtil   *jwt.JWTUtil
	validator *validator.Validate
}

func NewHandler(store *Store, jwtUtil *jwt.JWTUtil) *Handler {
	return &Handler{
		store:     store,
		jwtUtil:   jwtUtil,
		validator: validator.New(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates and mints a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication failed", err)
		return
	}
	token, err := h.jwtUtil.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// MyTeam returns the caller's team; 404 is the documented "no team" signal.
func (h *Handler) MyTeam(c *gin.Context) {
	team, err := h.store.Team()
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "You are not on a team yet", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Team retrieved successfully", team)
}

type createTeamRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *Handler) CreateTeam(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetString("user_id")
	team := h.store.CreateTeam(req.Name, req.Description, userID)
	utils.SuccessResponse(c, http.StatusCreated, "Team created successfully", team)
}

type addMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	member, err := h.store.AddMember(req.Email)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrNoTeam) {
			status = http.StatusNotFound
		}
		utils.ErrorResponse(c, status, "Could not add member", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Member added successfully", member)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	if err := h.store.RemoveMember(c.Param("id")); err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Member not found", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Member removed successfully", nil)
}

func (h *Handler) PendingApprovals(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Pending approvals retrieved", h.store.PendingApprovals())
}

type approveRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) ApproveLeave(c *gin.Context) {
	var req approveRequest
	_ = c.ShouldBindJSON(&req) // reason is optional, an empty body is fine

	if err := h.store.Decide(c.Param("id"), models.StatusApproved); err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Leave request not found", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Leave request approved", nil)
}

type rejectRequest struct {
	RejectionReason string `json:"rejectionReason" validate:"required"`
}

func (h *Handler) RejectLeave(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil || strings.TrimSpace(req.RejectionReason) == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "A rejection reason is required", err)
		return
	}

	if err := h.store.Decide(c.Param("id"), models.StatusRejected); err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Leave request not found", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Leave request rejected", nil)
}

func (h *Handler) TeamLeaves(c *gin.Context) {
	records, err := h.store.TeamLeaves(c.Param("teamId"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Team not found", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Team leaves retrieved", records)
}

func (h *Handler) PendingUsers(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Pending users retrieved", h.store.PendingUsers())
}

func (h *Handler) Health(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "ok", nil)
}
