package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/your-org/trackd/internal/auth"
	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/internal/storage"
	"github.com/your-org/trackd/pkg/dto"
)

type UserHandler struct {
	db     *storage.PostgresStore
	tokens *auth.Service
}

func NewUserHandler(db *storage.PostgresStore, tokens *auth.Service) *UserHandler {
	return &UserHandler{db: db, tokens: tokens}
}

// Login exchanges badge and password for a bearer token.
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.GetUser(c.Request.Context(), req.Badge)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.IssueToken(user.Badge, user.Name, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry := &models.ActionLog{UserBadge: user.Badge, UserName: user.Name, Action: models.ActionLogin}
	_ = h.db.InsertActionLog(c.Request.Context(), entry)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:   token,
		Badge:   user.Badge,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	})
}

// Create registers a new investigator account. Admin only.
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.db.GetUser(c.Request.Context(), req.Badge)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "badge already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		Badge:        req.Badge,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      req.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry := &models.ActionLog{
		UserBadge: c.GetString(auth.ContextBadge),
		UserName:  c.GetString(auth.ContextName),
		Action:    models.ActionCreateUser,
	}
	_ = h.db.InsertActionLog(c.Request.Context(), entry)

	c.JSON(http.StatusCreated, dto.UserResponse{
		Badge:     user.Badge,
		Name:      user.Name,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	})
}

// ChangePassword lets the authenticated user rotate their own password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	badge := c.GetString(auth.ContextBadge)
	user, err := h.db.GetUser(c.Request.Context(), badge)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.UpdateUserPassword(c.Request.Context(), badge, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry := &models.ActionLog{UserBadge: badge, UserName: user.Name, Action: models.ActionChangePassword}
	_ = h.db.InsertActionLog(c.Request.Context(), entry)

	c.Status(http.StatusNoContent)
}
