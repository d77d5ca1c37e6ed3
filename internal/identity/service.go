// Package identity implements account signup, credential checks and email
// confirmation on top of the user and token stores.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/config"
	"github.com/router-for-me/AppSubscriptions/internal/db"
	"github.com/router-for-me/AppSubscriptions/internal/mail"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"github.com/router-for-me/AppSubscriptions/internal/resource"
	"github.com/router-for-me/AppSubscriptions/internal/security"
	"github.com/router-for-me/AppSubscriptions/internal/store"
	log "github.com/sirupsen/logrus"
)

// Caller-facing messages.
const (
	MsgInvalidCredentials = "Unable to log in with provided credentials."
	MsgEmailTaken         = "A user is already registered with this e-mail address."
)

// confirmKeyBytes yields a 64 character hex confirmation key.
const confirmKeyBytes = 32

// signupAttempts bounds retries when a concurrent signup takes the chosen username.
const signupAttempts = 3

// usernameBatches bounds how many fresh candidate lists are tried per signup.
const usernameBatches = 5

// ErrNoUniqueUsername is returned when every username candidate is taken.
var ErrNoUniqueUsername = errors.New("identity: unable to find a unique username")

// Options configures a Service.
type Options struct {
	UniqueEmail       bool
	UsernameMaxLength int
	ConfirmURL        string
	Rand              Rand
}

// OptionsFromConfig maps account and mail settings to Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		UniqueEmail:       cfg.Account.EmailUnique(),
		UsernameMaxLength: cfg.Account.UsernameMaxLength,
		ConfirmURL:        cfg.Mail.ConfirmURL,
	}
}

// Service owns account creation and credential verification.
type Service struct {
	users  store.UserStore
	tokens store.TokenStore
	mailer mail.Sender
	opts   Options
	newKey func() (string, error)
}

// NewService constructs a Service.
func NewService(users store.UserStore, tokens store.TokenStore, mailer mail.Sender, opts Options) *Service {
	if opts.UsernameMaxLength <= 0 {
		opts.UsernameMaxLength = config.DefaultUsernameMaxLength
	}
	if opts.Rand == nil {
		opts.Rand = defaultRand{}
	}
	return &Service{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		opts:   opts,
		newKey: security.NewTokenKey,
	}
}

// Signup creates the account described by in and starts email confirmation.
func (s *Service) Signup(ctx context.Context, in resource.Signup) (*models.User, error) {
	email := CleanEmail(in.Email)
	if errTaken := s.checkEmailFree(ctx, email); errTaken != nil {
		return nil, errTaken
	}

	hash, errHash := security.HashPassword(in.Password)
	if errHash != nil {
		return nil, fmt.Errorf("identity: signup: %w", errHash)
	}
	confirmKey, errKey := security.GenerateRandomString(confirmKeyBytes)
	if errKey != nil {
		return nil, fmt.Errorf("identity: signup: %w", errKey)
	}

	var user *models.User
	for attempt := 1; ; attempt++ {
		username, errUsername := s.uniqueUsername(ctx, in.Name, email)
		if errUsername != nil {
			return nil, errUsername
		}
		user = &models.User{
			Username: username,
			Name:     in.Name,
			Email:    email,
			Password: hash,
			IsActive: true,
		}
		address := &models.EmailAddress{Email: email, Primary: true, ConfirmKey: confirmKey}
		errCreate := s.users.CreateWithEmail(ctx, user, address)
		if errCreate == nil {
			break
		}
		if !db.IsUniqueViolation(errCreate) {
			return nil, fmt.Errorf("identity: signup: %w", errCreate)
		}
		// The driver error does not say which index fired; a concurrent
		// signup with the same email shows up as the email being taken now.
		if errTaken := s.checkEmailFree(ctx, email); errTaken != nil {
			return nil, errTaken
		}
		if attempt >= signupAttempts {
			return nil, fmt.Errorf("identity: signup: %w", errCreate)
		}
		log.WithField("username", username).Debug("identity: username taken concurrently, retrying")
	}

	s.sendConfirmation(ctx, email, confirmKey)
	return user, nil
}

// checkEmailFree returns a field error when email uniqueness is enforced and
// another account already uses email.
func (s *Service) checkEmailFree(ctx context.Context, email string) error {
	if !s.opts.UniqueEmail {
		return nil
	}
	taken, errExists := s.users.EmailExists(ctx, email)
	if errExists != nil {
		return fmt.Errorf("identity: signup: %w", errExists)
	}
	if taken {
		return apperr.FieldError("email", MsgEmailTaken)
	}
	return nil
}

func (s *Service) uniqueUsername(ctx context.Context, name, email string) (string, error) {
	base := UsernameBase(name, email, FallbackUsername)
	for batch := 0; batch < usernameBatches; batch++ {
		candidates := UsernameCandidates(base, s.opts.UsernameMaxLength, s.opts.Rand)
		taken, errTaken := s.users.UsernamesTaken(ctx, candidates)
		if errTaken != nil {
			return "", fmt.Errorf("identity: username lookup: %w", errTaken)
		}
		for _, candidate := range candidates {
			if candidate == "" {
				continue
			}
			if _, exists := taken[strings.ToLower(candidate)]; !exists {
				return candidate, nil
			}
		}
		log.WithField("base", base).Debug("identity: username candidates exhausted, drawing new suffixes")
	}
	return "", ErrNoUniqueUsername
}

func (s *Service) sendConfirmation(ctx context.Context, email, key string) {
	if s.mailer == nil {
		return
	}
	msg := mail.ConfirmationMessage(email, mail.ConfirmationLink(s.opts.ConfirmURL, key))
	if errSend := s.mailer.Send(ctx, msg); errSend != nil {
		log.WithError(errSend).WithField("email", email).Warn("identity: confirmation email not sent")
	}
}

// Authenticate returns the active user matching login and password.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, errUser := s.users.GetByLogin(ctx, login)
	if errUser != nil {
		if apperr.Is(errUser, apperr.KindNotFound) {
			return nil, apperr.Authentication(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("identity: authenticate: %w", errUser)
	}
	if !user.IsActive || !security.CheckPassword(user.Password, password) {
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}
	return user, nil
}

// Login authenticates and returns the user's token, creating it on first use.
func (s *Service) Login(ctx context.Context, login, password string) (*models.User, *models.Token, error) {
	user, errAuth := s.Authenticate(ctx, login, password)
	if errAuth != nil {
		return nil, nil, errAuth
	}
	token, errToken := s.tokens.GetOrCreate(ctx, user.ID, s.newKey)
	if errToken != nil {
		return nil, nil, fmt.Errorf("identity: login: %w", errToken)
	}
	return user, token, nil
}

// ConfirmEmail marks the address holding key as verified.
func (s *Service) ConfirmEmail(ctx context.Context, key string) error {
	if _, errConfirm := s.users.ConfirmEmail(ctx, key); errConfirm != nil {
		if apperr.Is(errConfirm, apperr.KindNotFound) {
			return apperr.NotFound("Invalid or expired confirmation key.")
		}
		return fmt.Errorf("identity: confirm email: %w", errConfirm)
	}
	return nil
}
