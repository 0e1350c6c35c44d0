package models

type DashboardStats struct {
	OverallScore      float64       `json:"overall_score"`
	QuizScores        []float64     `json:"quiz_scores"`
	WeeklyHours       float64       `json:"weekly_hours"`
	StreakDays        int           `json:"streak_days"`
	Strengths         []string      `json:"strengths"`
	Weaknesses        []string      `json:"weaknesses"`
	UpcomingReminders []Reminder    `json:"upcoming_reminders"`
	RecentActivities  []ActivityLog `json:"recent_activities"`
}
