package user

type MeOutput struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
