package controllers

import (
	"time"

	"github.com/GameNest/models"
	"golang.org/x/crypto/bcrypt"
)

// Test fixture data for use in tests

var commentColumns = []string{
	"id", "target_id", "user_id", "comment_content", "parent_id", "created_at", "updated_at", "user_nickname",
}

// MockUser creates a sample user for testing
func MockUser() models.User {
	return models.User{
		ID:              1,
		User_Login_ID:   "testuser",
		User_Nickname:   "tester",
		User_Email:      "test@example.com",
		User_Created_At: time.Now(),
		User_Updated_At: time.Now(),
	}
}

// MockOtherUser is a second account that owns nothing MockUser owns.
func MockOtherUser() models.User {
	return models.User{
		ID:              2,
		User_Login_ID:   "otheruser",
		User_Nickname:   "other",
		User_Email:      "other@example.com",
		User_Created_At: time.Now(),
		User_Updated_At: time.Now(),
	}
}

// MockUserWithPassword creates a sample user with a bcrypt hashed password
// Password is "password123" - use this in tests
func MockUserWithPassword() models.User {
	user := MockUser()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user.User_Password = string(hashedPassword)
	return user
}

// MockComment creates a root comment written by MockUser on target 5
func MockComment() models.Comment {
	return models.Comment{
		ID:              10,
		Target_ID:       5,
		User_ID:         1,
		Comment_Content: "first!",
		Created_At:      time.Now(),
		User_Nickname:   "tester",
	}
}
