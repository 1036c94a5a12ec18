package models

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUsernameLength bounds display names, counted in runes.
const MaxUsernameLength = 32

// UserStats is the per-user scoring aggregate. Accuracy is always derived
// from the counters and is never persisted on its own.
type UserStats struct {
	UserID             string     `json:"userId"`
	WalletAddress      string     `json:"walletAddress"`
	Username           *string    `json:"username"`
	TotalPredictions   int64      `json:"totalPredictions"`
	CorrectPredictions int64      `json:"correctPredictions"`
	Points             int64      `json:"points"`
	ConsecutiveWins    int64      `json:"consecutiveWins"`
	LastPredictionDate *time.Time `json:"lastPredictionDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Accuracy returns correct/total as a percentage rounded to two places.
func (s *UserStats) Accuracy() float64 {
	return AccuracyOf(s.CorrectPredictions, s.TotalPredictions)
}

func AccuracyOf(correct, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*10000) / 100
}

// NormalizeUsername trims s. An empty result means "leave unchanged".
func NormalizeUsername(s string) (string, error) {
	name := strings.TrimSpace(s)
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		return "", ErrInvalidUsername
	}
	return name, nil
}

type Outcome struct {
	OverallCorrect bool
	PointsEarned   int
	Date           time.Time
}

// Apply folds one settled prediction into the aggregate.
func (s *UserStats) Apply(o Outcome) {
	s.TotalPredictions++
	if o.OverallCorrect {
		s.CorrectPredictions++
		s.ConsecutiveWins++
	} else {
		s.ConsecutiveWins = 0
	}
	s.Points += int64(o.PointsEarned)
	d := DayOf(o.Date)
	s.LastPredictionDate = &d
}

type LeaderboardKind string

const (
	LeaderboardPoints   LeaderboardKind = "points"
	LeaderboardAccuracy LeaderboardKind = "accuracy"
	LeaderboardStreak   LeaderboardKind = "streak"
)

func (k LeaderboardKind) Valid() bool {
	switch k {
	case LeaderboardPoints, LeaderboardAccuracy, LeaderboardStreak:
		return true
	}
	return false
}

// RankedStats is a user's stats plus their computed rank.
type RankedStats struct {
	UserStats
	Accuracy float64 `json:"accuracy"`
	Rank     int64   `json:"rank"`
}

type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"userId"`
	WalletAddress      string  `json:"walletAddress"`
	Username           *string `json:"username,omitempty"`
	Points             int64   `json:"points"`
	Accuracy           float64 `json:"accuracy"`
	ConsecutiveWins    int64   `json:"consecutiveWins"`
	TotalPredictions   int64   `json:"totalPredictions"`
	CorrectPredictions int64   `json:"correctPredictions"`
}

func NewLeaderboardEntry(rank int, s UserStats) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:               rank,
		UserID:             s.UserID,
		WalletAddress:      s.WalletAddress,
		Username:           s.Username,
		Points:             s.Points,
		Accuracy:           s.Accuracy(),
		ConsecutiveWins:    s.ConsecutiveWins,
		TotalPredictions:   s.TotalPredictions,
		CorrectPredictions: s.CorrectPredictions,
	}
}

// UserProfile is what a user sees about themselves.
type UserProfile struct {
	UserStats
	Accuracy float64 `json:"accuracy"`
}

func NewUserProfile(s UserStats) *UserProfile {
	return &UserProfile{UserStats: s, Accuracy: s.Accuracy()}
}
