package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vigilo-labs/vigilo-backend/internal/config"
	"github.com/vigilo-labs/vigilo-backend/internal/database"
	"github.com/vigilo-labs/vigilo-backend/internal/logger"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/repository"
)

// seedQuestion mirrors one trial exam question before insertion.
type seedQuestion struct {
	text    string
	options []string
	answer  string
}

var trialQuestions = []seedQuestion{
	{
		text:    "Welcome to the Trial Exam! What is the capital of France?",
		options: []string{"London", "Berlin", "Paris", "Madrid"},
		answer:  "Paris",
	},
	{
		text:    "Which programming language is known as the 'language of the web'?",
		options: []string{"Python", "Java", "JavaScript", "C++"},
		answer:  "JavaScript",
	},
	{
		text:    "What does CPU stand for?",
		options: []string{"Central Processing Unit", "Computer Personal Unit", "Central Program Utility", "Computer Processing Unit"},
		answer:  "Central Processing Unit",
	},
	{
		text:    "Which data structure operates on LIFO principle?",
		options: []string{"Queue", "Stack", "Tree", "Graph"},
		answer:  "Stack",
	},
	{
		text:    "What is the largest planet in our solar system?",
		options: []string{"Earth", "Mars", "Jupiter", "Saturn"},
		answer:  "Jupiter",
	},
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	// Idempotent: skip when the trial exam is already seeded.
	exams, _, err := examRepo.List(ctx, 1, 100)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list exams")
	}
	for _, e := range exams {
		if e.Title == "Trial Sample Exam" {
			fmt.Println("Trial exam already exists, skipping")
			return
		}
	}

	now := time.Now().UTC()
	end := now.AddDate(1, 0, 0) // Valid for 1 year

	exam := &model.Exam{
		Title:            "Trial Sample Exam",
		Description:      "A sample exam to help you get familiar with the exam system. This exam includes various types of questions and demonstrates all features.",
		DurationMinutes:  15,
		StartDate:        &now,
		EndDate:          &end,
		EnableMonitoring: true,
		Status:           model.ExamStatusActive,
	}
	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to create trial exam")
	}

	for i, q := range trialQuestions {
		opts, err := json.Marshal(q.options)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode options")
		}
		question := &model.Question{
			ExamID:        exam.ID,
			QuestionText:  q.text,
			Options:       opts,
			CorrectAnswer: q.answer,
			OrderNum:      i + 1,
		}
		if err := questionRepo.Create(ctx, question); err != nil {
			log.Fatal().Err(err).Msg("Failed to create question")
		}
	}

	fmt.Printf("Seeded trial exam %s with %d questions\n", exam.ID, len(trialQuestions))
}
