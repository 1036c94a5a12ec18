package usecase

import (
	"context"
	"testing"
	"time"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/repository/memory"
	"GoldPredict/pkg/cache"
	"GoldPredict/pkg/logger"
)

// settle folds outcomes straight into a user's stats.
func settle(t *testing.T, s *memory.Store, user string, outcomes ...models.Outcome) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.Stats.Ensure(ctx, user, "0x"+user); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	for _, o := range outcomes {
		if err := s.Stats.ApplyOutcome(ctx, user, o); err != nil {
			t.Fatalf("ApplyOutcome: %v", err)
		}
	}
}

func win() models.Outcome  { return models.Outcome{OverallCorrect: true, PointsEarned: 15, Date: day1} }
func miss() models.Outcome { return models.Outcome{PointsEarned: 5, Date: day1} }

func newLeaderboard(s *memory.Store, c *cache.MemoryCache) *Leaderboard {
	cfg := LeaderboardConfig{DefaultLimit: 50, MaxLimit: 100, AccuracyMinPredictions: 5, CacheTTL: time.Minute}
	if c == nil {
		return NewLeaderboard(s.Stats, s.Stats, nil, cfg, logger.Nop())
	}
	return NewLeaderboard(s.Stats, s.Stats, c, cfg, logger.Nop())
}

func TestStatsRankSharesTies(t *testing.T) {
	s := memory.New()
	settle(t, s, "a", win(), win())
	settle(t, s, "b", win(), win())
	settle(t, s, "c", win(), win(), win(), win())
	settle(t, s, "d", miss())

	lb := newLeaderboard(s, nil)
	want := map[string]int64{"c": 1, "a": 2, "b": 2, "d": 4}
	for user, rank := range want {
		st, err := lb.Stats(context.Background(), user)
		if err != nil {
			t.Fatalf("Stats(%s): %v", user, err)
		}
		if st.Rank != rank {
			t.Fatalf("rank(%s) = %d, want %d", user, st.Rank, rank)
		}
	}

	d, _ := lb.Stats(context.Background(), "d")
	if d.Accuracy != 0 || d.TotalPredictions != 1 {
		t.Fatalf("d = %+v", d)
	}
}

func TestRankNeverWorsensWithMorePoints(t *testing.T) {
	s := memory.New()
	settle(t, s, "a", win())
	settle(t, s, "b", win(), win())
	lb := newLeaderboard(s, nil)

	before, _ := lb.Stats(context.Background(), "a")
	settle(t, s, "a", miss())
	after, _ := lb.Stats(context.Background(), "a")
	if after.Rank > before.Rank {
		t.Fatalf("rank went from %d to %d after gaining points", before.Rank, after.Rank)
	}
}

func TestTopAccuracyRequiresMinimumPredictions(t *testing.T) {
	s := memory.New()
	settle(t, s, "veteran", win(), win(), win(), miss(), miss())
	settle(t, s, "rookie", win())

	entries, err := newLeaderboard(s, nil).Top(context.Background(), models.LeaderboardAccuracy, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "veteran" || entries[0].Accuracy != 60 {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestTopStreakOrdersByConsecutiveWins(t *testing.T) {
	s := memory.New()
	settle(t, s, "a", win(), win(), win(), miss())
	settle(t, s, "b", win(), win())

	entries, err := newLeaderboard(s, nil).Top(context.Background(), models.LeaderboardStreak, 0)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if entries[0].UserID != "b" || entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestTopIsCachedUntilInvalidated(t *testing.T) {
	s := memory.New()
	settle(t, s, "a", win())
	c := cache.NewMemoryCache()
	defer c.Close()
	lb := newLeaderboard(s, c)

	first, err := lb.Top(context.Background(), models.LeaderboardPoints, 10)
	if err != nil || len(first) != 1 {
		t.Fatalf("Top = %v, %v", first, err)
	}

	settle(t, s, "b", win(), win())
	cached, _ := lb.Top(context.Background(), models.LeaderboardPoints, 10)
	if len(cached) != 1 {
		t.Fatalf("expected cached board, got %d rows", len(cached))
	}

	if err := lb.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	fresh, _ := lb.Top(context.Background(), models.LeaderboardPoints, 10)
	if len(fresh) != 2 || fresh[0].UserID != "b" {
		t.Fatalf("fresh = %+v", fresh)
	}
}

func TestTopRejectsUnknownKind(t *testing.T) {
	if _, err := newLeaderboard(memory.New(), nil).Top(context.Background(), "wealth", 10); err == nil {
		t.Fatalf("expected error")
	}
}
