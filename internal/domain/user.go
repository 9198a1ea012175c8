package domain

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleCustomer UserRole = "CUSTOMER"
)

type UserStatus string

const (
	UserActive  UserStatus = "ACTIVE"
	UserBlocked UserStatus = "BLOCKED"
)

type User struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Role    UserRole   `json:"role"`
	Status  UserStatus `json:"status"`
	Address string     `json:"address"`
	Phone   string     `json:"phone"`
	Avatar  string     `json:"avatar"`
}
