package models

import "time"

type User struct {
	ID              int64     `json:"id" db:"id" goqu:"skipinsert"`
	User_Login_ID   string    `json:"user_login_id" db:"user_login_id"`
	User_Password   string    `json:"-" db:"user_password"`
	User_Nickname   string    `json:"user_nickname" db:"user_nickname"`
	User_Email      string    `json:"user_email" db:"user_email"`
	User_Created_At time.Time `json:"user_created_at" db:"user_created_at" goqu:"skipinsert"`
	User_Updated_At time.Time `json:"user_updated_at" db:"user_updated_at" goqu:"skipinsert"`
}

type UserSignup struct {
	User_Login_ID string `json:"user_login_id"`
	User_Password string `json:"user_password"`
	User_Nickname string `json:"user_nickname"`
	User_Email    string `json:"user_email"`
}

type Login struct {
	User_Login_ID string `json:"user_login_id"`
	User_Password string `json:"user_password"`
}

type FindID struct {
	User_Email    string `json:"user_email"`
	User_Nickname string `json:"user_nickname"`
}

type FindPassword struct {
	User_Login_ID string `json:"user_login_id"`
	User_Email    string `json:"user_email"`
}

// UserUpdate requires the current nickname and email as a second factor;
// empty new values keep the current ones.
type UserUpdate struct {
	CurrentNickname string `json:"currentNickname"`
	NewNickname     string `json:"newNickname"`
	CurrentEmail    string `json:"currentEmail"`
	NewEmail        string `json:"newEmail"`
}

type UserChangePassword struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type ResetPassword struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}
