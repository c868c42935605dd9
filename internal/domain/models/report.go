package models

// ReportCell is one day/customer intersection of the month matrix.
type ReportCell struct {
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// ReportCustomer is a column of the month matrix.
type ReportCustomer struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PricePerUnit float64 `json:"pricePerLitre"`
}

// MonthReport is the day-by-customer billing grid for one shift and month.
// Matrix always carries exactly one key per calendar day; days without
// deliveries map to an empty cell map so consumers never special-case
// missing days. Matrix cell keys are customer ids.
type MonthReport struct {
	Year                     int                           `json:"year"`
	Month                    int                           `json:"month"`
	DaysInMonth              int                           `json:"daysInMonth"`
	Customers                []ReportCustomer              `json:"customers"`
	Matrix                   map[int]map[string]ReportCell `json:"matrix"`
	TotalsByCustomerQuantity map[string]float64            `json:"totalsByCustomerQuantity"`
	TotalsByCustomerAmount   map[string]float64            `json:"totalsByCustomerAmount"`
	TotalsByDay              map[int]float64               `json:"totalsByDay"`
	GrandTotal               float64                       `json:"grandTotal"`
}
