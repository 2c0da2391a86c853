package entity

// Period is a term of office scoping members and departments.
type Period struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsActive  bool   `json:"isActive"`
}

type Department struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PeriodID  string `json:"periodId"`
	SortOrder int    `json:"sortOrder"`
}
