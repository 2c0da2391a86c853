package entity

// Awardee is a scholarship recipient.
type Awardee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	University string `json:"university"`
	Major      string `json:"major"`
	Year       string `json:"year"`
	Status     string `json:"status"`
}

// Program is a department work program with a 0..100 progress.
type Program struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	PIC        string `json:"pic"`
}

// Transaction is a treasury ledger line. Negative amounts are expenses.
type Transaction struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
}

// Template is a reusable letter skeleton.
type Template struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	SubjectTemplate string `json:"subjectTemplate"`
	ContentTemplate string `json:"contentTemplate"`
	Category        string `json:"category"`
	Description     string `json:"description"`
}

// LetterRead records that a user has opened a letter.
type LetterRead struct {
	UserID   string `json:"userId"`
	LetterID string `json:"letterId"`
	ReadAt   string `json:"readAt"`
}
