package handler

import (
	"fmt"
	"strings"

	"CampusEventBot/model"
)

// FormatEventCaption renders an event for display. Unknown category tags
// degrade to the default emoji and label instead of failing to render.
func FormatEventCaption(e model.Event, showCreator bool) string {
	c := model.CategoryByKey(e.Category)

	var links strings.Builder
	if e.TgLink != "" {
		links.WriteString("\n🔗 Channel: " + e.TgLink)
	}
	if e.TgChatLink != "" {
		links.WriteString("\n💬 Chat: " + e.TgChatLink)
	}

	creator := ""
	if showCreator && e.CreatorName != "" {
		creator = "\n👤 Creator: " + e.CreatorName
	}

	return fmt.Sprintf(
		"📌 %s\n\n📝 Description: %s\n📅 Date: %s\n📍 Location: %s\n🏷️ Type: %s %s%s%s",
		e.Name, e.Description, e.Time, e.Location, c.Emoji, c.Name, links.String(), creator,
	)
}

// catalogSummary seeds a consultation transcript with the current catalog so
// the assistant recommends events that actually exist.
func catalogSummary(events []model.Event) string {
	if len(events) == 0 {
		return "There are currently no events in the catalog."
	}

	var b strings.Builder
	b.WriteString("Current event catalog:")
	for _, e := range events {
		c := model.CategoryByKey(e.Category)
		fmt.Fprintf(&b, "\n- %s (%s) on %s at %s: %s", e.Name, c.Name, e.Time, e.Location, e.Description)
	}
	return b.String()
}

// participantsCaption renders a creator's participant listing.
func participantsCaption(eventName string, participants []model.Participant) string {
	if len(participants) == 0 {
		return fmt.Sprintf("👥 Nobody has registered for \"%s\" yet", eventName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 Participants of \"%s\" (%d):\n", eventName, len(participants))
	for i, p := range participants {
		fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, p.Name, p.Faculty)
	}
	return b.String()
}
