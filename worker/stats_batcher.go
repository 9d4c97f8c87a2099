package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"studyhub/store"
)

type StatsUpdate struct {
	UserId         string // Kept for logging/reference
	UserProvider   string
	UserProviderId string
	TaskDelta      int
	CompletedDelta int
}

// StatsBatcher coalesces per-user task counters so a burst of task churn
// becomes one profile update instead of a write per toggle.
type StatsBatcher struct {
	UpdateCh           chan StatsUpdate
	studyStore         store.StudyStore
	tickerMilliseconds int
}

func NewStatsBatcher(studyStore store.StudyStore, tickerMilliseconds int) *StatsBatcher {
	return &StatsBatcher{
		UpdateCh:           make(chan StatsUpdate, 1024),
		studyStore:         studyStore,
		tickerMilliseconds: tickerMilliseconds,
	}
}

func (b *StatsBatcher) Run(shutdownCtx context.Context) {
	ticker := time.NewTicker(time.Duration(b.tickerMilliseconds) * time.Millisecond)
	defer ticker.Stop()

	type pendingDeltas struct {
		provider   string
		providerId string
		tasks      int
		completed  int
	}
	// Key: "provider#providerId"
	pending := make(map[string]pendingDeltas)

	flush := func() {
		for _, p := range pending {
			if p.tasks == 0 && p.completed == 0 {
				continue
			}
			go func(p pendingDeltas) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := b.studyStore.IncrementUserTaskCounts(ctx, p.provider, p.providerId, p.tasks, p.completed); err != nil {
					log.Printf("Failed to update task counts for user %s#%s: %v", p.provider, p.providerId, err)
				}
			}(p)
		}
		pending = make(map[string]pendingDeltas)
	}

	for {
		select {
		case update := <-b.UpdateCh:
			if update.UserProvider == "" || update.UserProviderId == "" {
				continue
			}
			key := update.UserProvider + "#" + update.UserProviderId
			p := pending[key]
			p.provider = update.UserProvider
			p.providerId = update.UserProviderId
			p.tasks += update.TaskDelta
			p.completed += update.CompletedDelta
			pending[key] = p

			if len(pending) >= 100 {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-shutdownCtx.Done():
			flush()
			return
		}
	}
}
