package resource

import (
	"time"

	"github.com/router-for-me/AppSubscriptions/internal/models"
)

// UserOutput is the public user shape. It never carries the password.
type UserOutput struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AppOutput is the app response shape.
type AppOutput struct {
	ID           uint64              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Type         models.AppType      `json:"type"`
	Framework    models.AppFramework `json:"framework"`
	DomainName   string              `json:"domain_name"`
	Screenshot   string              `json:"screenshot"`
	User         uint64              `json:"user"`
	Subscription *SubscriptionOutput `json:"subscription"` // Never resolved; always null.
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// SubscriptionOutput is the subscription response shape.
type SubscriptionOutput struct {
	ID        uint64    `json:"id"`
	User      uint64    `json:"user"`
	Plan      uint64    `json:"plan"`
	App       uint64    `json:"app"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlanOutput exposes every catalog field.
type PlanOutput struct {
	ID          uint64       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       models.Price `json:"price"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// LoginOutput is returned by a successful login.
type LoginOutput struct {
	Token string     `json:"token"`
	User  UserOutput `json:"user"`
}

// NewUserOutput maps a user record.
func NewUserOutput(u *models.User) UserOutput {
	return UserOutput{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewAppOutput maps an app record.
func NewAppOutput(a *models.App) AppOutput {
	return AppOutput{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Type:        a.Type,
		Framework:   a.Framework,
		DomainName:  a.DomainName,
		Screenshot:  a.Screenshot,
		User:        a.UserID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// NewAppOutputs maps a list of app records.
func NewAppOutputs(apps []models.App) []AppOutput {
	out := make([]AppOutput, 0, len(apps))
	for i := range apps {
		out = append(out, NewAppOutput(&apps[i]))
	}
	return out
}

// NewSubscriptionOutput maps a subscription record.
func NewSubscriptionOutput(s *models.Subscription) SubscriptionOutput {
	return SubscriptionOutput{
		ID:        s.ID,
		User:      s.UserID,
		Plan:      s.PlanID,
		App:       s.AppID,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// NewSubscriptionOutputs maps a list of subscription records.
func NewSubscriptionOutputs(subs []models.Subscription) []SubscriptionOutput {
	out := make([]SubscriptionOutput, 0, len(subs))
	for i := range subs {
		out = append(out, NewSubscriptionOutput(&subs[i]))
	}
	return out
}

// NewPlanOutput maps a plan record.
func NewPlanOutput(p *models.Plan) PlanOutput {
	return PlanOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewPlanOutputs maps a list of plan records.
func NewPlanOutputs(plans []models.Plan) []PlanOutput {
	out := make([]PlanOutput, 0, len(plans))
	for i := range plans {
		out = append(out, NewPlanOutput(&plans[i]))
	}
	return out
}

// NewLoginOutput maps a token and its user.
func NewLoginOutput(key string, u *models.User) LoginOutput {
	return LoginOutput{Token: key, User: NewUserOutput(u)}
}
