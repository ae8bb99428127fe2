package controllers

import (
	"net/http"

	"github.com/GameNest/middlewares"
	"github.com/GameNest/models"
	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
)

// CommentController serves the comment routes of one scope, either game
// comments or community comments.
type CommentController struct {
	comments *services.CommentService
	scope    services.CommentScope
}

func NewCommentController(comments *services.CommentService, scope services.CommentScope) *CommentController {
	return &CommentController{comments: comments, scope: scope}
}

// List returns the comment tree of a target. No identity is needed.
func (cc *CommentController) List(c *gin.Context) {
	targetID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	tree, err := cc.comments.List(c.Request.Context(), cc.scope, targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (cc *CommentController) Create(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	if !principal.IsAuthenticated() {
		respondError(c, services.ErrLoginRequired)
		return
	}

	targetID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var input models.CommentCreate
	if !bindJSON(c, &input) {
		return
	}

	comment, err := cc.comments.Create(c.Request.Context(), cc.scope, principal, targetID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (cc *CommentController) Update(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	targetID, commentID, ok := cc.commentPath(c)
	if !ok {
		return
	}

	var input models.CommentUpdate
	if !bindJSON(c, &input) {
		return
	}

	comment, err := cc.comments.Update(c.Request.Context(), cc.scope, principal, targetID, commentID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully", "comment": comment})
}

func (cc *CommentController) Delete(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	targetID, commentID, ok := cc.commentPath(c)
	if !ok {
		return
	}

	if err := cc.comments.Delete(c.Request.Context(), cc.scope, principal, targetID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// Mine lists the caller's comments across games and community posts.
func (cc *CommentController) Mine(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	if !principal.IsAuthenticated() {
		respondError(c, services.ErrLoginRequired)
		return
	}

	comments, err := cc.comments.ListByUser(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (cc *CommentController) commentPath(c *gin.Context) (int64, int64, bool) {
	targetID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return 0, 0, false
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		respondError(c, err)
		return 0, 0, false
	}
	return targetID, commentID, true
}
