package auth

type registerPayload struct {
	Username  string `json:"username" mod:"trim" validate:"required,min=3,max=150"`
	Email     string `json:"email" mod:"trim" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=150"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=150"`
	Surname   string `json:"surname" mod:"trim" validate:"max=150"`
	Role      string `json:"role" mod:"trim" validate:"required,oneof=reader writer"`
}

type loginPayload struct {
	Username string `json:"username" mod:"trim" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshPayload struct {
	Refresh string `json:"refresh" validate:"required"`
}

type logoutPayload struct {
	Refresh string `json:"refresh" validate:"required"`
}
