// Package service holds the account-facing application services that sit
// between the HTTP handlers and the domain engines.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/auth"
	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/guard"
	"github.com/JonathanDunkleberger/Kimi/internal/ledger"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration and login.
type AuthService struct {
	pool           *pgxpool.Pool
	users          repository.UserRepository
	transactions   repository.TransactionRepository
	ledger         *ledger.Engine
	jwtMgr         *auth.JWTManager
	initialCredits int64
}

// NewAuthService creates a new AuthService. initialCredits is granted to every
// new account through a signup_credit ledger entry.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	ledgerEngine *ledger.Engine,
	jwtMgr *auth.JWTManager,
	initialCredits int64,
) *AuthService {
	return &AuthService{
		pool:           pool,
		users:          users,
		transactions:   transactions,
		ledger:         ledgerEngine,
		jwtMgr:         jwtMgr,
		initialCredits: initialCredits,
	}
}

// SignupInput holds the registration request fields.
type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Credits  int64     `json:"credits"`
}

// Signup creates a new account and grants the starting credits, both in one
// transaction. The grant goes through the ledger so the very first
// transactions row explains where the balance came from.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	existing, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: string(hash),
		Credits:      0,
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, domain.ErrInternal("create user", err)
	}

	extID := fmt.Sprintf("signup:%s", user.ID)
	meta, _ := json.Marshal(map[string]string{"reason": "signup grant"})
	_, updated, err := s.ledger.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:                user.ID,
		Type:                  domain.TxSignupCredit,
		Amount:                s.initialCredits,
		Delta:                 s.initialCredits,
		ExternalTransactionID: &extID,
		Metadata:              meta,
	})
	if err != nil {
		return nil, domain.ErrInternal("grant signup credits", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmUser, user.ID, user.Username, "")
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Credits:  updated.Credits,
	}, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a JWT. remoteIP feeds the lockout
// audit trail.
func (s *AuthService) Login(ctx context.Context, input LoginInput, remoteIP string) (*AuthResult, error) {
	if err := guard.CheckLocked(ctx, s.pool, input.Username, string(auth.RealmUser)); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, string(auth.RealmUser), remoteIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, string(auth.RealmUser), remoteIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	guard.RecordAttempt(ctx, s.pool, input.Username, string(auth.RealmUser), remoteIP, true)

	token, err := s.jwtMgr.GenerateToken(auth.RealmUser, user.ID, user.Username, "")
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Credits:  user.Credits,
	}, nil
}

// AdminLogin authenticates a back-office account from admin_users and returns
// an admin-realm JWT carrying the role claim.
func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput, remoteIP string) (*AuthResult, error) {
	if err := guard.CheckLocked(ctx, s.pool, input.Username, string(auth.RealmAdmin)); err != nil {
		return nil, err
	}

	var (
		id           uuid.UUID
		passwordHash string
		role         string
		active       bool
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, password_hash, role, active
		FROM admin_users WHERE username = $1`, input.Username).
		Scan(&id, &passwordHash, &role, &active)
	if err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, string(auth.RealmAdmin), remoteIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if !active {
		return nil, domain.ErrForbidden("account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, string(auth.RealmAdmin), remoteIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	guard.RecordAttempt(ctx, s.pool, input.Username, string(auth.RealmAdmin), remoteIP, true)

	token, err := s.jwtMgr.GenerateToken(auth.RealmAdmin, id, input.Username, role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, UserID: id, Username: input.Username}, nil
}

// Me returns the current account with its live balance.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}

// Transactions returns the user's ledger history, newest first.
func (s *AuthService) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	txs, err := s.transactions.ListByUser(ctx, s.pool, userID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}
	return txs, nil
}
