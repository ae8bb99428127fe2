package models

import "time"

const (
	CategoryFree     = "자유"
	CategoryQuestion = "질문"

	// list filters that are not stored categories
	CategoryAll     = "전체글"
	CategoryPopular = "인기글"

	PopularViewThreshold = 50
)

// CommunityPost.User_ID carries the author's nickname, matching the
// shape the web client renders.
type CommunityPost struct {
	ID         int64     `json:"id" db:"id"`
	User_ID    string    `json:"user_id" db:"user_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	Category   string    `json:"category" db:"category"`
	Views      int64     `json:"views" db:"views"`
	Created_At time.Time `json:"created_at" db:"created_at"`
	Updated_At time.Time `json:"updated_at" db:"updated_at"`
}

type CommunityPostCreate struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type CommunityPostDetail struct {
	CommunityPost
	LikeCount int64 `json:"likeCount"`
	Liked     bool  `json:"liked"`
	Scrapped  bool  `json:"scrapped"`
}

type ScrappedPost struct {
	ID         int64     `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Category   string    `json:"category" db:"category"`
	Views      int64     `json:"views" db:"views"`
	Created_At time.Time `json:"created_at" db:"created_at"`
	LikeCount  int64     `json:"likeCount" db:"like_count"`
}
