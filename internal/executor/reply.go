package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/nbryan/concierge/internal/classifier"
	"github.com/nbryan/concierge/internal/store"
)

// genericReplies are classifier messages too empty to show on their own:
// a mutation reply must always name what was verified against the store.
var genericReplies = map[string]bool{
	"got it":  true,
	"ok":      true,
	"okay":    true,
	"done":    true,
	"sure":    true,
	"alright": true,
}

// replyOrTemplate prefers the classifier-supplied message unless it is
// absent or generic, in which case the deterministic template wins.
func replyOrTemplate(message, template string) string {
	cleaned := classifier.CleanReply(message)
	key := strings.ToLower(strings.TrimRight(cleaned, ".!"))
	if cleaned == "" || genericReplies[key] {
		return template
	}
	return cleaned
}

// kindNoun is the user-facing name of a collection.
func kindNoun(kind store.Kind) string {
	switch kind {
	case store.KindTask:
		return "task"
	case store.KindAppointment:
		return "appointment"
	case store.KindHabit:
		return "routine"
	case store.KindGrocery:
		return "grocery item"
	default:
		return string(kind)
	}
}

func addedReply(kind store.Kind, title string, when *time.Time, timed bool) string {
	switch {
	case when != nil && timed:
		return fmt.Sprintf("Added %s %q for %s at %s.", kindNoun(kind), title,
			when.Format("Monday, Jan 2"), when.Format("3:04 PM"))
	case when != nil:
		return fmt.Sprintf("Added %s %q for %s.", kindNoun(kind), title,
			when.Format("Monday, Jan 2"))
	default:
		return fmt.Sprintf("Added %s %q.", kindNoun(kind), title)
	}
}

func addedManyReply(kind store.Kind, titles []string) string {
	return fmt.Sprintf("Added %d %ss: %s.", len(titles), kindNoun(kind), strings.Join(titles, ", "))
}

func notFoundReply(kind store.Kind, title string) string {
	return fmt.Sprintf("I couldn't find a %s called %q.", kindNoun(kind), title)
}

func updatedReply(kind store.Kind, title string) string {
	return fmt.Sprintf("Updated %s %q.", kindNoun(kind), title)
}

func priorityReply(kind store.Kind, title string, priority int) string {
	return fmt.Sprintf("Set priority of %s %q to %d.", kindNoun(kind), title, priority)
}

func deleteConfirmPrompt(kind store.Kind, title string) string {
	return fmt.Sprintf("Should I delete the %s %q? (yes/no)", kindNoun(kind), title)
}

func deletedReply(kind store.Kind, title string) string {
	return fmt.Sprintf("Deleted %s %q.", kindNoun(kind), title)
}

func keptReply(kind store.Kind, title string) string {
	return fmt.Sprintf("Okay, I kept the %s %q.", kindNoun(kind), title)
}

func calendarReply(date string) string {
	return fmt.Sprintf("Showing your calendar for %s.", date)
}

const clearedReply = "Cleared our conversation."

// Apology is the fixed turn text for a failed classification call.
const Apology = "Sorry, I couldn't process that right now. Please try again."
