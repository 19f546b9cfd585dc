package model

type RevenueDay struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type RevenueReport struct {
	TotalRevenue float64      `json:"total_revenue"`
	Details      []RevenueDay `json:"details"`
}

type UsageDay struct {
	Date            string  `json:"date"`
	SessionsCount   int     `json:"sessions_count"`
	AverageDuration float64 `json:"average_duration"`
}

type UsageReport struct {
	TotalSessions   int        `json:"total_sessions"`
	AverageDuration float64    `json:"average_duration"`
	Details         []UsageDay `json:"details"`
}
