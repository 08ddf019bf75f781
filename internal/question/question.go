// Package question generates future-dated follow-up prompts instead of
// instant judgments. At t=0 the system's job is to observe and ask, not to
// label: "what happened next?", not "this is consumptive."
package question

import (
	"time"

	"github.com/google/uuid"

	"github.com/chusla/improvement-axiom/internal/core"
)

// GenerateQuestions returns three questions scheduled at the short, medium,
// and long-term horizons (1 day, 14 days, 90 days after the experience),
// with text templated on the experience and varied by trajectory history.
func GenerateQuestions(experience *core.Experience, trajectory *core.Trajectory) []core.PendingQuestion {
	now := experience.Timestamp

	return []core.PendingQuestion{
		{
			ID:           uuid.NewString(),
			ExperienceID: experience.ID,
			UserID:       experience.UserID,
			Text:         shortTermQuestion(experience, trajectory),
			AskAfter:     now.Add(core.HorizonDuration(core.HorizonShortTerm)),
			Horizon:      core.HorizonShortTerm,
		},
		{
			ID:           uuid.NewString(),
			ExperienceID: experience.ID,
			UserID:       experience.UserID,
			Text:         mediumTermQuestion(experience, trajectory),
			AskAfter:     now.Add(core.HorizonDuration(core.HorizonMediumTerm)),
			Horizon:      core.HorizonMediumTerm,
		},
		{
			ID:           uuid.NewString(),
			ExperienceID: experience.ID,
			UserID:       experience.UserID,
			Text:         longTermQuestion(experience, trajectory),
			AskAfter:     now.Add(core.HorizonDuration(core.HorizonLongTerm)),
			Horizon:      core.HorizonLongTerm,
		},
	}
}

// GetDueQuestions returns the unasked questions in pending whose ask_after
// has passed asOf.
func GetDueQuestions(pending []core.PendingQuestion, asOf time.Time) []core.PendingQuestion {
	var due []core.PendingQuestion
	for _, q := range pending {
		if !q.Asked && !q.AskAfter.After(asOf) {
			due = append(due, q)
		}
	}
	return due
}

func shortTermQuestion(e *core.Experience, t *core.Trajectory) string {
	desc := truncate(e.Description, 80)
	if t != nil && t.HasHistory() && t.CreationRate > 0.3 {
		return "You mentioned '" + desc + "' recently. Did it spark any new ideas or projects?"
	}
	return "A couple of days ago you experienced '" + desc + "'. Has anything come out of that — " +
		"any thoughts, ideas, or things you've started doing differently?"
}

func mediumTermQuestion(e *core.Experience, _ *core.Trajectory) string {
	desc := truncate(e.Description, 80)
	if e.UserRating > 0.7 {
		return "A couple of weeks back you experienced '" + desc + "' and rated it highly. Looking back, did that " +
			"experience lead to anything — something you created, shared, or a change in how you spend your time?"
	}
	return "Reflecting on '" + desc + "' from a couple of weeks ago: did it influence anything you've done since? " +
		"Sometimes effects aren't obvious right away."
}

func longTermQuestion(e *core.Experience, _ *core.Trajectory) string {
	desc := truncate(e.Description, 80)
	return "A few months ago you experienced '" + desc + "'. Looking back now with the benefit of time: did that " +
		"experience contribute to anything meaningful in your life? Any skills built, relationships deepened, or " +
		"creative output that traces back to it?"
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}
