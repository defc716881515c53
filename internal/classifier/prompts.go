package classifier

import (
	"fmt"
	"strings"

	"github.com/nbryan/concierge/internal/store"
)

const systemPrompt = `You are the command interpreter for a personal productivity assistant. The user manages tasks, calendar appointments, recurring habits, and a grocery list by talking to you.

You MUST respond with valid JSON matching this schema:
{
  "action": "add|update|update_priority|delete|navigate_calendar|clear_chat|respond",
  "message": "short plain-prose reply to show the user",
  "kind": "task|appointment|habit|grocery",
  "title": "title of a new item",
  "search_title": "name the user used for an existing item",
  "notes": "free-form notes for a new item",
  "datetime": "ISO 8601 datetime for due/start times",
  "date": "ISO 8601 date for calendar navigation",
  "priority": 0,
  "frequency": "daily|weekly|monthly or similar, for habits",
  "updates": {"field": "new value"},
  "items": ["grocery items when the user lists several at once"]
}

Rules:
- Emit exactly one action per utterance; omit fields that do not apply.
- "routine" means the habit collection.
- Use search_title for update/update_priority/delete, copying the user's
  wording; the application resolves it against stored items itself.
- For questions or chit-chat use action "respond" with only a message.
- The message must be plain prose: no markdown, no JSON, no code fences.
- When the fulfilled list already names a category, do not volunteer
  suggestions for it again.`

// renderRequest flattens the request into the user prompt. The service
// sees ids plus labels only; volatile fields stay local.
func renderRequest(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Now\nLocal: %s\nAbsolute: %s\n", req.NowLocal, req.NowAbsolute)

	if snap := req.Snapshot; snap != nil {
		b.WriteString("\n## Stored Items\n")
		writeRefs(&b, "Tasks", snap.Tasks)
		writeRefs(&b, "Appointments", snap.Appointments)
		writeRefs(&b, "Habits", snap.Habits)
		writeRefs(&b, "Groceries", snap.Groceries)
	}

	if len(req.RecentTurns) > 0 {
		b.WriteString("\n## Recent Conversation\n")
		for _, t := range req.RecentTurns {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
		}
	}

	if len(req.FulfilledIntents) > 0 {
		fmt.Fprintf(&b, "\n## Already Suggested\n%s\n", strings.Join(req.FulfilledIntents, ", "))
	}

	fmt.Fprintf(&b, "\n## Utterance\n%s\n", req.Utterance)

	return b.String()
}

func writeRefs(b *strings.Builder, heading string, refs []store.Ref) {
	if len(refs) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for _, r := range refs {
		fmt.Fprintf(b, "- %s (id %s)\n", r.Label, r.ID)
	}
}
