package models

// Registration is one submitted registration form. Field names follow the
// form keys and the columns of the registration table.
type Registration struct {
	Username string `json:"username" db:"username"`
	RegNo    string `json:"regno" db:"regno"`
	Password string `json:"password" db:"password"` // stored as received unless hashing is enabled
}
