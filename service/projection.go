package service

import (
	"math"
	"sort"
	"time"

	"studyhub/models"
)

// The store is only ever queried per owner (the broadest safe query); all
// narrower shaping lives here as pure functions so it can be tested without a
// store. Filtering is plain equality, sorting is stable, and a document
// missing its sort field compares equal instead of failing.

func ProjectTopics(rows []models.Topic, ownerId string) []models.Topic {
	out := make([]models.Topic, 0, len(rows))
	for _, t := range rows {
		if t.OwnerId == ownerId {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Updated == 0 || out[j].Updated == 0 {
			return false
		}
		return out[i].Updated > out[j].Updated
	})
	return out
}

func ProjectTasks(rows []models.Task, ownerId string, topicId string) []models.Task {
	out := make([]models.Task, 0, len(rows))
	for _, t := range rows {
		if t.OwnerId != ownerId {
			continue
		}
		if topicId != "" && t.TopicId != topicId {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Created == 0 || out[j].Created == 0 {
			return false
		}
		return out[i].Created > out[j].Created
	})
	return out
}

func ProjectReminders(rows []models.Reminder, ownerId string, topicId string) []models.Reminder {
	out := make([]models.Reminder, 0, len(rows))
	for _, r := range rows {
		if r.OwnerId != ownerId {
			continue
		}
		if topicId != "" && r.TopicId != topicId {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date == 0 || out[j].Date == 0 {
			return false
		}
		return out[i].Date < out[j].Date
	})
	return out
}

func ProjectNotes(rows []models.Note, ownerId string, topicId string) []models.Note {
	out := make([]models.Note, 0, len(rows))
	for _, n := range rows {
		if n.OwnerId != ownerId {
			continue
		}
		if topicId != "" && n.TopicId != topicId {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Updated == 0 || out[j].Updated == 0 {
			return false
		}
		return out[i].Updated > out[j].Updated
	})
	return out
}

// CompletionPercent reports completed/total rounded to a whole percent.
// A topic with no tasks is 0, never a division error.
func CompletionPercent(tasks []models.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(tasks)) * 100))
}

// IsOverdue classifies a reminder whose date has passed and which is still
// open. Completed reminders are never overdue; neither are undated ones.
func IsOverdue(r models.Reminder, now time.Time) bool {
	if r.Completed || r.Date == 0 {
		return false
	}
	return r.Date < now.UnixMilli()
}

// BuildReminderViews annotates each reminder with its overdue state as of now.
func BuildReminderViews(reminders []models.Reminder, now time.Time) []ReminderView {
	out := make([]ReminderView, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, ReminderView{Reminder: r, Overdue: IsOverdue(r, now)})
	}
	return out
}
