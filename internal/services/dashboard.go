package services

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"studymate-backend/internal/models"
)

const (
	recentQuizLimit       = 5
	upcomingReminderLimit = 3
	recentActivityLimit   = 5
	weeklyWindow          = 7 * 24 * time.Hour
)

// Strengths and weaknesses are not derived from data yet.
var (
	placeholderStrengths  = []string{"Algebra", "Probability"}
	placeholderWeaknesses = []string{"Geometry", "Trigonometry"}
)

type completedQuizLister interface {
	ListRecentlyCompleted(ctx context.Context, userID string, limit int) ([]models.Quiz, error)
}

type studySessionLister interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.StudySession, error)
}

type upcomingReminderLister interface {
	ListUpcoming(ctx context.Context, userID string, now time.Time, limit int) ([]models.Reminder, error)
}

type recentActivityLister interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error)
}

// DashboardService composes read-only queries into the dashboard summary.
type DashboardService struct {
	quizzes    completedQuizLister
	sessions   studySessionLister
	reminders  upcomingReminderLister
	activities recentActivityLister
	now        func() time.Time
}

func NewDashboardService(
	quizzes completedQuizLister,
	sessions studySessionLister,
	reminders upcomingReminderLister,
	activities recentActivityLister,
) *DashboardService {
	return &DashboardService{
		quizzes:    quizzes,
		sessions:   sessions,
		reminders:  reminders,
		activities: activities,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *DashboardService) Stats(ctx context.Context, user *models.User) (*models.DashboardStats, error) {
	now := s.now()

	var (
		quizzes    []models.Quiz
		sessions   []models.StudySession
		reminders  []models.Reminder
		activities []models.ActivityLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quizzes, err = s.quizzes.ListRecentlyCompleted(gctx, user.ID, recentQuizLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent quizzes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.ListSince(gctx, user.ID, now.Add(-weeklyWindow))
		if err != nil {
			return fmt.Errorf("failed to load weekly study sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reminders, err = s.reminders.ListUpcoming(gctx, user.ID, now, upcomingReminderLimit)
		if err != nil {
			return fmt.Errorf("failed to load upcoming reminders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		activities, err = s.activities.ListRecent(gctx, user.ID, recentActivityLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent activity: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := quizScores(quizzes)

	return &models.DashboardStats{
		OverallScore:      averageScore(scores),
		QuizScores:        scores,
		WeeklyHours:       studyHours(sessions),
		StreakDays:        user.StreakDays,
		Strengths:         placeholderStrengths,
		Weaknesses:        placeholderWeaknesses,
		UpcomingReminders: nonNilReminders(reminders),
		RecentActivities:  nonNilActivities(activities),
	}, nil
}

// RecentScore returns the latest completed quiz score, or a nil score when
// the user has not completed any quiz.
func (s *DashboardService) RecentScore(ctx context.Context, userID string) (*models.RecentScore, error) {
	quizzes, err := s.quizzes.ListRecentlyCompleted(ctx, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest quiz: %w", err)
	}
	if len(quizzes) == 0 {
		return &models.RecentScore{}, nil
	}
	return &models.RecentScore{Score: quizzes[0].Score, CompletedAt: quizzes[0].CompletedAt}, nil
}

func quizScores(quizzes []models.Quiz) []float64 {
	scores := make([]float64, 0, len(quizzes))
	for _, q := range quizzes {
		if q.Score == nil {
			continue
		}
		scores = append(scores, *q.Score)
	}
	return scores
}

// averageScore is the mean rounded to one decimal, 0 for no scores.
func averageScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	mean, err := stats.Mean(scores)
	if err != nil {
		return 0
	}
	return roundOneDecimal(mean)
}

// studyHours sums session minutes and converts to hours, one decimal.
func studyHours(sessions []models.StudySession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	minutes := make([]float64, len(sessions))
	for i, s := range sessions {
		minutes[i] = float64(s.DurationMinutes)
	}
	total, err := stats.Sum(minutes)
	if err != nil {
		return 0
	}
	return roundOneDecimal(total / 60)
}

func roundOneDecimal(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil {
		return 0
	}
	return r
}

func nonNilReminders(r []models.Reminder) []models.Reminder {
	if r == nil {
		return []models.Reminder{}
	}
	return r
}

func nonNilActivities(a []models.ActivityLog) []models.ActivityLog {
	if a == nil {
		return []models.ActivityLog{}
	}
	return a
}
