package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vigilo-labs/vigilo-backend/internal/repository"
)

// DashboardService composes host-facing monitoring views.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
	attemptRepo   *repository.AttemptRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository, attemptRepo *repository.AttemptRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo, attemptRepo: attemptRepo}
}

// GlobalStats returns the platform-wide dashboard counters.
func (s *DashboardService) GlobalStats(ctx context.Context) (*repository.GlobalStats, error) {
	return s.dashboardRepo.GetGlobalStats(ctx)
}

// RecentViolations returns the latest attempts with recorded violations.
func (s *DashboardService) RecentViolations(ctx context.Context, limit int) ([]repository.RecentViolation, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	violations, err := s.dashboardRepo.ListRecentViolations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent violations: %w", err)
	}
	if violations == nil {
		violations = []repository.RecentViolation{}
	}
	return violations, nil
}

// ExamStats returns real-time counters for one exam.
func (s *DashboardService) ExamStats(ctx context.Context, examID uuid.UUID) (*repository.ExamStats, error) {
	return s.dashboardRepo.GetExamStats(ctx, examID)
}

// ExamParticipant is one row of the per-exam participant table.
type ExamParticipant struct {
	AttemptID   uuid.UUID  `json:"attempt_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Status      string     `json:"status"` // active | completed
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Score       *int       `json:"score,omitempty"`
	AltTabCount int        `json:"alt_tab_count"`
	Progress    int        `json:"answered_count"`
}

// ExamParticipants lists everyone who attempted the exam.
func (s *DashboardService) ExamParticipants(ctx context.Context, examID uuid.UUID) ([]ExamParticipant, error) {
	summaries, err := s.attemptRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	participants := make([]ExamParticipant, 0, len(summaries))
	for _, sum := range summaries {
		status := "active"
		if sum.EndTime != nil {
			status = "completed"
		}
		participants = append(participants, ExamParticipant{
			AttemptID:   sum.AttemptID,
			Name:        sum.ParticipantName,
			Email:       sum.ParticipantEmail,
			Status:      status,
			StartTime:   sum.StartTime,
			EndTime:     sum.EndTime,
			Score:       sum.Score,
			AltTabCount: sum.AltTabCount,
			Progress:    sum.AnsweredCount,
		})
	}
	return participants, nil
}

// AllParticipants lists recent attempts across every exam for the global
// dashboard table.
func (s *DashboardService) AllParticipants(ctx context.Context, limit int) ([]ExamParticipant, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	summaries, err := s.attemptRepo.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	participants := make([]ExamParticipant, 0, len(summaries))
	for _, sum := range summaries {
		status := "active"
		if sum.EndTime != nil {
			status = "completed"
		}
		participants = append(participants, ExamParticipant{
			AttemptID:   sum.AttemptID,
			Name:        sum.ParticipantName,
			Email:       sum.ParticipantEmail,
			Status:      status,
			StartTime:   sum.StartTime,
			EndTime:     sum.EndTime,
			Score:       sum.Score,
			AltTabCount: sum.AltTabCount,
			Progress:    sum.AnsweredCount,
		})
	}
	return participants, nil
}

// ExamViolation is one offender row of the per-exam violation list.
type ExamViolation struct {
	AttemptID        uuid.UUID `json:"attempt_id"`
	ParticipantName  string    `json:"participant_name"`
	ParticipantEmail string    `json:"participant_email"`
	Count            int       `json:"count"`
	StartTime        time.Time `json:"start_time"`
}

// ExamViolations lists attempts of the exam with at least one violation.
func (s *DashboardService) ExamViolations(ctx context.Context, examID uuid.UUID) ([]ExamViolation, error) {
	summaries, err := s.attemptRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	violations := make([]ExamViolation, 0)
	for _, sum := range summaries {
		if sum.AltTabCount == 0 {
			continue
		}
		violations = append(violations, ExamViolation{
			AttemptID:        sum.AttemptID,
			ParticipantName:  sum.ParticipantName,
			ParticipantEmail: sum.ParticipantEmail,
			Count:            sum.AltTabCount,
			StartTime:        sum.StartTime,
		})
	}
	return violations, nil
}

// ActivityEntry is one line of the per-exam activity feed.
type ActivityEntry struct {
	Type        string    `json:"type"` // start | violation | complete
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ExamActivity derives a recent-activity feed from the exam's attempts,
// newest first, capped at limit entries.
func (s *DashboardService) ExamActivity(ctx context.Context, examID uuid.UUID, limit int) ([]ActivityEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	summaries, err := s.attemptRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	activities := make([]ActivityEntry, 0, len(summaries)*2)
	for _, sum := range summaries {
		activities = append(activities, ActivityEntry{
			Type:        "start",
			Description: fmt.Sprintf("%s started the exam", sum.ParticipantName),
			Timestamp:   sum.StartTime,
		})
		if sum.AltTabCount > 0 {
			activities = append(activities, ActivityEntry{
				Type:        "violation",
				Description: fmt.Sprintf("%s had %d alt-tab violations", sum.ParticipantName, sum.AltTabCount),
				Timestamp:   sum.StartTime,
			})
		}
		if sum.EndTime != nil {
			score := 0
			if sum.Score != nil {
				score = *sum.Score
			}
			activities = append(activities, ActivityEntry{
				Type:        "complete",
				Description: fmt.Sprintf("%s completed the exam with score %d", sum.ParticipantName, score),
				Timestamp:   *sum.EndTime,
			})
		}
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

// ExamAttempts lists raw attempt summaries of one exam for the host.
func (s *DashboardService) ExamAttempts(ctx context.Context, examID uuid.UUID) ([]repository.AttemptSummary, error) {
	summaries, err := s.attemptRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if summaries == nil {
		summaries = []repository.AttemptSummary{}
	}
	return summaries, nil
}
