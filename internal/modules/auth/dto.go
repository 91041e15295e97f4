package auth

type RegisterRequest struct {
	Name                  string `json:"name" binding:"required"`
	Email                 string `json:"email" binding:"required,email"`
	Password              string `json:"password" binding:"required,min=6"`
	WantsToBePsychologist bool   `json:"wants_to_be_psychologist"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyRequestDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyConfirmDTO struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type TelegramLoginRequest struct {
	TelegramID  int64   `json:"telegram_id" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name"`
	ClientToken *string `json:"client_token,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UserPublic struct {
	ID             int64  `json:"id"`
	Email          string `json:"email,omitempty"`
	TelegramID     int64  `json:"telegram_id,omitempty"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	IsPsychologist bool   `json:"is_psychologist"`
}
