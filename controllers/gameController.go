package controllers

import (
	"net/http"

	"github.com/GameNest/middlewares"
	"github.com/GameNest/models"
	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
)

type GameController struct {
	games *services.GameService
}

func NewGameController(games *services.GameService) *GameController {
	return &GameController{games: games}
}

// List accepts sort=date|likes|rating|title; anything else sorts by id.
func (gc *GameController) List(c *gin.Context) {
	games, err := gc.games.List(c.Request.Context(), c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (gc *GameController) Detail(c *gin.Context) {
	gameID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	detail, err := gc.games.Detail(c.Request.Context(), middlewares.CurrentPrincipal(c), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (gc *GameController) ToggleLike(c *gin.Context) {
	gameID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := gc.games.ToggleLike(c.Request.Context(), middlewares.CurrentPrincipal(c), gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Game removed from likes"
	if result.Active {
		message = "Game added to likes"
	}
	c.JSON(http.StatusOK, gin.H{
		"liked":     result.Active,
		"likeCount": result.Count,
		"message":   message,
	})
}

func (gc *GameController) Rate(c *gin.Context) {
	gameID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var input models.GameRatingInput
	if !bindJSON(c, &input) {
		return
	}

	if err := gc.games.Rate(c.Request.Context(), middlewares.CurrentPrincipal(c), gameID, input.Rating); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating saved"})
}

func (gc *GameController) Rating(c *gin.Context) {
	gameID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := gc.games.Rating(c.Request.Context(), middlewares.CurrentPrincipal(c), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (gc *GameController) Liked(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	if !principal.IsAuthenticated() {
		respondError(c, services.ErrLoginRequired)
		return
	}

	games, err := gc.games.Liked(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (gc *GameController) ByCategory(c *gin.Context) {
	games, err := gc.games.ByCategory(c.Request.Context(), c.Param("type"), c.Param("value"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}
