package model

// OrderStats summarises orders created in one calendar year.
type OrderStats struct {
	Year        int             `json:"year"`
	TotalOrders int             `json:"totalOrders"`
	ByStatus    map[Status]int  `json:"byStatus"`
	ByCategory  []CategoryCount `json:"byCategory"`
	Monthly     []MonthlyCount  `json:"monthly"`
}

// CategoryCount counts requested lines and quantities for one product category.
type CategoryCount struct {
	Category string `json:"category"`
	Lines    int    `json:"lines"`
	Quantity int    `json:"quantity"`
}

// MonthlyCount is the number of orders created in a month (1-12).
type MonthlyCount struct {
	Month  int `json:"month"`
	Orders int `json:"orders"`
}
