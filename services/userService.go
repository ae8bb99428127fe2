package services

import (
	"context"
	"strings"
	"time"

	"github.com/GameNest/models"
	"github.com/doug-martin/goqu/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRequiredFields    = NewError(ErrValidation, "all fields are required")
	ErrLoginIDTaken      = NewError(ErrConflict, "login id already exists")
	ErrLoginFailed       = NewError(ErrUnauthenticated, "login id or password does not match")
	ErrUserNotFound      = NewError(ErrNotFound, "user not found")
	ErrProfileMismatch   = NewError(ErrValidation, "current nickname or email does not match")
	ErrOldPasswordWrong  = NewError(ErrValidation, "old password does not match")
	ErrFindPasswordEmpty = NewError(ErrValidation, "login id and email are required")
)

type UserService struct {
	db      *goqu.Database
	tokens  *TokenService
	timeout time.Duration
	cost    int
}

func NewUserService(db *goqu.Database, tokens *TokenService, timeout time.Duration) *UserService {
	return &UserService{db: db, tokens: tokens, timeout: timeout, cost: bcrypt.DefaultCost}
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", NewError(ErrValidation, "password cannot be hashed")
	}
	return string(h), nil
}

func (s *UserService) Register(ctx context.Context, input models.UserSignup) (models.User, error) {
	input.User_Login_ID = strings.TrimSpace(input.User_Login_ID)
	input.User_Nickname = strings.TrimSpace(input.User_Nickname)
	input.User_Email = strings.TrimSpace(input.User_Email)
	if input.User_Login_ID == "" || input.User_Password == "" || input.User_Nickname == "" || input.User_Email == "" {
		return models.User{}, ErrRequiredFields
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	taken, err := s.db.From("users").
		Where(goqu.C("user_login_id").Eq(input.User_Login_ID)).
		CountContext(ctx)
	if err != nil {
		return models.User{}, storageError("check login id", err)
	}
	if taken > 0 {
		return models.User{}, ErrLoginIDTaken
	}

	passwordHash, err := s.hash(input.User_Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		User_Login_ID: input.User_Login_ID,
		User_Password: passwordHash,
		User_Nickname: input.User_Nickname,
		User_Email:    input.User_Email,
	}
	_, err = s.db.Insert("users").
		Rows(user).
		Returning("id", "user_created_at", "user_updated_at").
		Executor().ScanStructContext(ctx, &user)
	if err != nil {
		// a concurrent registration can still win the unique index
		return models.User{}, classifyStorageError("insert user", err, nil, ErrLoginIDTaken)
	}
	return user, nil
}

// Login checks the credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, input models.Login) (string, models.User, error) {
	if strings.TrimSpace(input.User_Login_ID) == "" || input.User_Password == "" {
		return "", models.User{}, NewError(ErrValidation, "login id and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	found, err := s.db.From("users").
		Where(goqu.C("user_login_id").Eq(strings.TrimSpace(input.User_Login_ID))).
		ScanStructContext(ctx, &user)
	if err != nil {
		return "", models.User{}, storageError("load user", err)
	}
	if !found {
		return "", models.User{}, ErrLoginFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.User_Password), []byte(input.User_Password)); err != nil {
		return "", models.User{}, ErrLoginFailed
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", models.User{}, storageError("issue token", err)
	}
	return token, user, nil
}

func (s *UserService) FindLoginID(ctx context.Context, input models.FindID) (string, error) {
	email := strings.TrimSpace(input.User_Email)
	nickname := strings.TrimSpace(input.User_Nickname)
	if email == "" || nickname == "" {
		return "", NewError(ErrValidation, "email and nickname are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var loginID string
	found, err := s.db.From("users").
		Select("user_login_id").
		Where(goqu.Ex{"user_email": email, "user_nickname": nickname}).
		ScanValContext(ctx, &loginID)
	if err != nil {
		return "", storageError("find login id", err)
	}
	if !found {
		return "", ErrUserNotFound
	}
	return loginID, nil
}

// FindPassword verifies login id and email and returns a short-lived reset
// token for ResetPassword.
func (s *UserService) FindPassword(ctx context.Context, input models.FindPassword) (string, error) {
	loginID := strings.TrimSpace(input.User_Login_ID)
	email := strings.TrimSpace(input.User_Email)
	if loginID == "" || email == "" {
		return "", ErrFindPasswordEmpty
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var id int64
	found, err := s.db.From("users").
		Select("id").
		Where(goqu.Ex{"user_login_id": loginID, "user_email": email}).
		ScanValContext(ctx, &id)
	if err != nil {
		return "", storageError("find user for reset", err)
	}
	if !found {
		return "", NewError(ErrNotFound, "login id or email is incorrect")
	}

	token, err := s.tokens.IssueResetToken(id)
	if err != nil {
		return "", storageError("issue reset token", err)
	}
	return token, nil
}

func (s *UserService) ResetPassword(ctx context.Context, input models.ResetPassword) error {
	if input.ResetToken == "" || input.NewPassword == "" {
		return NewError(ErrValidation, "reset token and new password are required")
	}
	userID, err := s.tokens.VerifyResetToken(input.ResetToken)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, userID, input.NewPassword)
}

func (s *UserService) setPassword(ctx context.Context, userID int64, password string) error {
	passwordHash, err := s.hash(password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.Update("users").
		Set(goqu.Record{"user_password": passwordHash, "user_updated_at": goqu.L("NOW()")}).
		Where(goqu.C("id").Eq(userID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return storageError("update password", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile changes nickname and email. The caller must repeat the
// current values; an empty new value keeps the current one.
func (s *UserService) UpdateProfile(ctx context.Context, principal models.Principal, input models.UserUpdate) error {
	if !principal.IsAuthenticated() {
		return ErrLoginRequired
	}
	if input.CurrentNickname == "" || input.CurrentEmail == "" {
		return NewError(ErrValidation, "current nickname and email are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matched, err := s.db.From("users").
		Where(goqu.Ex{"id": principal.ID, "user_nickname": input.CurrentNickname, "user_email": input.CurrentEmail}).
		CountContext(ctx)
	if err != nil {
		return storageError("match profile", err)
	}
	if matched == 0 {
		return ErrProfileMismatch
	}

	nickname, email := input.CurrentNickname, input.CurrentEmail
	if n := strings.TrimSpace(input.NewNickname); n != "" {
		nickname = n
	}
	if e := strings.TrimSpace(input.NewEmail); e != "" {
		email = e
	}

	_, err = s.db.Update("users").
		Set(goqu.Record{"user_nickname": nickname, "user_email": email, "user_updated_at": goqu.L("NOW()")}).
		Where(goqu.C("id").Eq(principal.ID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return storageError("update profile", err)
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, principal models.Principal, input models.UserChangePassword) error {
	if !principal.IsAuthenticated() {
		return ErrLoginRequired
	}
	if input.OldPassword == "" || input.NewPassword == "" {
		return NewError(ErrValidation, "old and new password are required")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var current string
	found, err := s.db.From("users").
		Select("user_password").
		Where(goqu.C("id").Eq(principal.ID)).
		ScanValContext(lookupCtx, &current)
	if err != nil {
		return storageError("load password", err)
	}
	if !found {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(input.OldPassword)); err != nil {
		return ErrOldPasswordWrong
	}

	return s.setPassword(ctx, principal.ID, input.NewPassword)
}

func (s *UserService) Get(ctx context.Context, id int64) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	found, err := s.db.From("users").
		Where(goqu.C("id").Eq(id)).
		ScanStructContext(ctx, &user)
	if err != nil {
		return models.User{}, storageError("load user", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}
