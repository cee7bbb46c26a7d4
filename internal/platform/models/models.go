package models

type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderLine   Provider = "line"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderEmail, ProviderGoogle, ProviderLine:
		return true
	}
	return false
}

// Identity is the signed-in user. Only APIKey changes after sign-in.
type Identity struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Avatar   string   `json:"avatar,omitempty"`
	Provider Provider `json:"provider"`
	APIKey   string   `json:"apiKey,omitempty"`
}
