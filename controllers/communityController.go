package controllers

import (
	"net/http"

	"github.com/GameNest/middlewares"
	"github.com/GameNest/models"
	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
)

type CommunityController struct {
	posts *services.CommunityService
}

func NewCommunityController(posts *services.CommunityService) *CommunityController {
	return &CommunityController{posts: posts}
}

func (cc *CommunityController) List(c *gin.Context) {
	posts, err := cc.posts.List(c.Request.Context(), c.Query("category"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (cc *CommunityController) Create(c *gin.Context) {
	var input models.CommunityPostCreate
	if !bindJSON(c, &input) {
		return
	}

	id, err := cc.posts.Create(c.Request.Context(), middlewares.CurrentPrincipal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "id": id})
}

func (cc *CommunityController) MyPosts(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	if !principal.IsAuthenticated() {
		respondError(c, services.ErrLoginRequired)
		return
	}

	posts, err := cc.posts.MyPosts(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Detail counts a view and returns the post with the caller's flags.
func (cc *CommunityController) Detail(c *gin.Context) {
	postID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	detail, err := cc.posts.View(c.Request.Context(), middlewares.CurrentPrincipal(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (cc *CommunityController) Act(c *gin.Context) {
	postID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var input models.CommunityAction
	if !bindJSON(c, &input) {
		return
	}

	detail, err := cc.posts.Act(c.Request.Context(), middlewares.CurrentPrincipal(c), postID, input.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (cc *CommunityController) Scraps(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	if !principal.IsAuthenticated() {
		respondError(c, services.ErrLoginRequired)
		return
	}

	posts, err := cc.posts.Scraps(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
