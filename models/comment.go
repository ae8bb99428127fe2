package models

import "time"

// AnonymousNickname is shown when a comment's author row no longer exists.
const AnonymousNickname = "anonymous"

// Comment is one row of game_comments or community_comments joined with
// the author's nickname.
type Comment struct {
	ID              int64      `json:"id" db:"id"`
	Target_ID       int64      `json:"target_id" db:"target_id"`
	User_ID         int64      `json:"user_id" db:"user_id"`
	Comment_Content string     `json:"comment_content" db:"comment_content"`
	Parent_ID       *int64     `json:"parent_id" db:"parent_id"`
	Created_At      time.Time  `json:"created_at" db:"created_at"`
	Updated_At      *time.Time `json:"updated_at" db:"updated_at"`
	User_Nickname   string     `json:"user_nickname" db:"user_nickname"`
}

func (c Comment) IsRoot() bool {
	return c.Parent_ID == nil
}

// CommentNode is a Comment with its replies. It is rebuilt on every read.
type CommentNode struct {
	Comment
	Children []*CommentNode `json:"children" db:"-"`
}

type CommentCreate struct {
	Content   string `json:"content"`
	Parent_ID *int64 `json:"parent_id"`
}

type CommentUpdate struct {
	Content string `json:"content"`
}

// MyComment is a comment of the current user on either a game or a community post.
type MyComment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"postId" db:"post_id"`
	PostTitle string    `json:"postTitle" db:"post_title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	PostType  string    `json:"postType" db:"post_type"`
}
