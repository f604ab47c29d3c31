package users

// CreateUserRequest is the body of POST /staff.
type CreateUserRequest struct {
	FirstName  string  `json:"firstName" validate:"required,max=100"`
	LastName   string  `json:"lastName" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,email,max=254"`
	Password   string  `json:"password" validate:"required,min=6,max=72"`
	Username   *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	EmployeeID *string `json:"employeeId,omitempty" validate:"omitempty,max=50"`
	Role       string  `json:"role,omitempty" validate:"omitempty,oneof=admin proprietor staff"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Title      *string `json:"title,omitempty" validate:"omitempty,max=100"`
}

// UpdateUserRequest is the body of PUT /staff/{id}. Nil fields are left alone.
type UpdateUserRequest struct {
	FirstName       *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	Username        *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	EmployeeID      *string `json:"employeeId,omitempty" validate:"omitempty,max=50"`
	Role            *string `json:"role,omitempty" validate:"omitempty,oneof=admin proprietor staff"`
	Department      *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Title           *string `json:"title,omitempty" validate:"omitempty,max=100"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
}

// SetActiveRequest toggles an account.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}
