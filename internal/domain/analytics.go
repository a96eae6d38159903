package domain

// ============================================================
// Admin analytics
// ============================================================

// Period selects the window for professional performance.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// DailyRevenue is one bar of the revenue chart.
type DailyRevenue struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// ServiceCount is one slice of the popularity chart.
type ServiceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProfessionalPerformance is one row of the performance table.
type ProfessionalPerformance struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Role  string  `json:"role"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// AnalyticsReport is returned by GET /v1/admin/analytics.
type AnalyticsReport struct {
	Filter            string                    `json:"filter"`
	Period            Period                    `json:"period"`
	TotalAppointments int                       `json:"totalAppointments"`
	TotalRevenue      float64                   `json:"totalRevenue"`
	CompletionRate    float64                   `json:"completionRate"`
	RevenueByDay      []DailyRevenue            `json:"revenueByDay"`
	ServicePopularity []ServiceCount            `json:"servicePopularity"`
	Performance       []ProfessionalPerformance `json:"performance"`
}

// UnknownServiceLabel names appointments whose service no longer exists.
const UnknownServiceLabel = "Unknown"
