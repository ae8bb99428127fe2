package controllers

import (
	"log"
	"net/http"

	"github.com/GameNest/middlewares"
	"github.com/GameNest/models"
	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) Register(c *gin.Context) {
	var input models.UserSignup
	if !bindJSON(c, &input) {
		return
	}

	user, err := uc.users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("User registered: %s (%d)", user.User_Login_ID, user.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully.", "user": user})
}

func (uc *UserController) Login(c *gin.Context) {
	var input models.Login
	if !bindJSON(c, &input) {
		return
	}

	token, user, err := uc.users.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "User logged in successfully.",
		"token":         token,
		"user_nickname": user.User_Nickname,
	})
}

func (uc *UserController) FindLoginID(c *gin.Context) {
	var input models.FindID
	if !bindJSON(c, &input) {
		return
	}

	loginID, err := uc.users.FindLoginID(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_login_id": loginID})
}

// FindPassword hands out a reset token once the login id and email match.
func (uc *UserController) FindPassword(c *gin.Context) {
	var input models.FindPassword
	if !bindJSON(c, &input) {
		return
	}

	resetToken, err := uc.users.FindPassword(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account verified.", "resetToken": resetToken})
}

func (uc *UserController) ResetPassword(c *gin.Context) {
	var input models.ResetPassword
	if !bindJSON(c, &input) {
		return
	}

	if err := uc.users.ResetPassword(c.Request.Context(), input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var input models.UserUpdate
	if !bindJSON(c, &input) {
		return
	}

	if err := uc.users.UpdateProfile(c.Request.Context(), middlewares.CurrentPrincipal(c), input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully."})
}

func (uc *UserController) ChangePassword(c *gin.Context) {
	var input models.UserChangePassword
	if !bindJSON(c, &input) {
		return
	}

	if err := uc.users.ChangePassword(c.Request.Context(), middlewares.CurrentPrincipal(c), input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (uc *UserController) Me(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	if !principal.IsAuthenticated() {
		respondError(c, services.ErrLoginRequired)
		return
	}

	user, err := uc.users.Get(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
