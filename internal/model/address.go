package model

// Address is a delivery address from the user's address book.
type Address struct {
	ID          string `json:"id" db:"id"`
	AddressLine string `json:"addressLine" db:"address_line"`
	City        string `json:"city" db:"city"`
	State       string `json:"state" db:"state"`
	Pincode     string `json:"pincode" db:"pincode"`
	Country     string `json:"country" db:"country"`
	Mobile      string `json:"mobile" db:"mobile"`
}

// UserSummary is the requester information shown next to an order.
type UserSummary struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}
