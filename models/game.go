package models

import "time"

type Game struct {
	ID                int64      `json:"id" db:"id"`
	Game_Title        string     `json:"game_title" db:"game_title"`
	Game_Thumbnail    string     `json:"game_thumbnail" db:"game_thumbnail"`
	Game_Description  string     `json:"game_description" db:"game_description"`
	Game_Story        string     `json:"game_story" db:"game_story"`
	Game_Release_Date *time.Time `json:"game_release_date" db:"game_release_date"`
	Game_Developer    string     `json:"game_developer" db:"game_developer"`
	Game_Publisher    string     `json:"game_publisher" db:"game_publisher"`
	Game_Platforms    JSONB      `json:"game_platforms" db:"game_platforms"`
	Game_Modes        JSONB      `json:"game_modes" db:"game_modes"`
	Game_Tags         JSONB      `json:"game_tags" db:"game_tags"`
	Game_Media        JSONB      `json:"game_media" db:"game_media"`
	Game_Created_At   time.Time  `json:"game_created_at" db:"game_created_at"`
	Game_Updated_At   time.Time  `json:"game_updated_at" db:"game_updated_at"`
}

type GameSummary struct {
	ID             int64  `json:"id" db:"id"`
	Game_Title     string `json:"game_title" db:"game_title"`
	Game_Thumbnail string `json:"game_thumbnail" db:"game_thumbnail"`
}

// GameDetail personal fields are only set for an authenticated caller.
type GameDetail struct {
	Game          Game     `json:"game"`
	Liked         bool     `json:"liked"`
	LikeCount     int64    `json:"likeCount"`
	MyRating      *float64 `json:"myRating"`
	AverageRating float64  `json:"averageRating"`
}

type GameRatingInput struct {
	Rating *float64 `json:"rating"`
}

type GameRatingSummary struct {
	Avg_Rating  float64  `json:"avg_rating"`
	User_Rating *float64 `json:"user_rating"`
}
