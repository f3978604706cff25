package dialog

import (
	"strings"

	"CampusEventBot/model"
)

// Result is the outcome of feeding one input into a dialogue stage.
type Result struct {
	// Invalid carries a correction prompt when the input was rejected.
	// The stage is left unchanged.
	Invalid string
	// Done marks the dialogue terminal: the draft is complete and the
	// caller persists it and clears the session.
	Done bool
}

type key struct {
	family Family
	stage  Stage
}

// transition validates one input and either advances the session's stage,
// completes the dialogue, or rejects the input with a correction prompt.
type transition func(s *Session, input string) Result

// Advance runs the transition registered for the session's current (family,
// stage). The second return is false when no transition exists there, e.g.
// for stages fed by button presses rather than text.
func Advance(s *Session, input string) (Result, bool) {
	t, ok := transitions[key{s.Family, s.Stage}]
	if !ok {
		return Result{}, false
	}
	return t(s, input), true
}

var transitions map[key]transition

func init() {
	transitions = map[key]transition{
		{FamilyRegistration, StageRegName}:    collect("name", validateAlpha("⚠️ The name must contain only letters. Please enter a valid name."), StageRegFaculty, false),
		{FamilyRegistration, StageRegFaculty}: collect("faculty", validateAlpha("⚠️ The faculty must contain only letters. Please enter a valid faculty."), 0, true),
	}

	// Creation and edit collect the same event fields in the same order
	// with the same validation; they differ only in how they terminate
	// and in the edit family's keep-current shortcut.
	for _, family := range []Family{FamilyEventCreate, FamilyEventEdit} {
		transitions[key{family, StageEventName}] = collect("name", validateRequired, StageEventDescription, false)
		transitions[key{family, StageEventDescription}] = collect("description", validateRequired, StageEventLocation, false)
		transitions[key{family, StageEventLocation}] = collect("location", validateRequired, StageEventTime, false)
		transitions[key{family, StageEventTime}] = collect("time", validateDate, StageEventTgLink, false)
		transitions[key{family, StageEventTgLink}] = collectLink("tg_link", StageEventTgChatLink)
		transitions[key{family, StageEventTgChatLink}] = collectLink("tg_chat_link", StageEventCategory)
		transitions[key{family, StageEventCategory}] = collect("category", validateCategory, 0, true)
	}
}

func collect(field string, validate func(string) string, next Stage, done bool) transition {
	return func(s *Session, input string) Result {
		input = strings.TrimSpace(input)
		if validate != nil {
			if msg := validate(input); msg != "" {
				return Result{Invalid: msg}
			}
		}
		s.Draft[field] = input
		if done {
			return Result{Done: true}
		}
		s.Stage = next
		return Result{}
	}
}

// collectLink accepts a t.me link or the "no" sentinel, which records an
// empty link instead of failing validation.
func collectLink(field string, next Stage) transition {
	return func(s *Session, input string) Result {
		input = strings.TrimSpace(input)
		if IsNoLink(input) {
			input = ""
		} else if !IsTelegramLink(input) {
			return Result{Invalid: "⚠️ The link must start with t.me/ or https://t.me/, or send \"no\" to skip."}
		}
		s.Draft[field] = input
		s.Stage = next
		return Result{}
	}
}

func validateAlpha(msg string) func(string) string {
	return func(input string) string {
		if !IsAlpha(input) {
			return msg
		}
		return ""
	}
}

func validateRequired(input string) string {
	if input == "" {
		return "⚠️ This field cannot be empty. Please try again."
	}
	return ""
}

func validateDate(input string) string {
	if !IsValidDate(input) {
		return "⚠️ The date must be in DD.MM.YYYY format. Please try again."
	}
	return ""
}

func validateCategory(input string) string {
	if !model.ValidCategory(input) {
		return "⚠️ Unknown event type. Please try again."
	}
	return ""
}

// originalFields maps each edit stage to the draft key it fills and the
// snapshot field the keep-current shortcut copies verbatim.
var originalFields = map[Stage]struct {
	field string
	get   func(model.Event) string
}{
	StageEventName:        {"name", func(e model.Event) string { return e.Name }},
	StageEventDescription: {"description", func(e model.Event) string { return e.Description }},
	StageEventLocation:    {"location", func(e model.Event) string { return e.Location }},
	StageEventTime:        {"time", func(e model.Event) string { return e.Time }},
	StageEventTgLink:      {"tg_link", func(e model.Event) string { return e.TgLink }},
	StageEventTgChatLink:  {"tg_chat_link", func(e model.Event) string { return e.TgChatLink }},
	StageEventCategory:    {"category", func(e model.Event) string { return e.Category }},
}

// editOrder is the linear stage sequence of the edit family.
var editOrder = []Stage{
	StageEventName,
	StageEventDescription,
	StageEventLocation,
	StageEventTime,
	StageEventTgLink,
	StageEventTgChatLink,
	StageEventCategory,
}

// KeepCurrent short-circuits the edit family's current stage by copying the
// field from the original snapshot instead of new input, then advances. The
// second return is false outside the edit family.
func KeepCurrent(s *Session) (Result, bool) {
	if s.Family != FamilyEventEdit {
		return Result{}, false
	}
	spec, ok := originalFields[s.Stage]
	if !ok {
		return Result{}, false
	}
	s.Draft[spec.field] = spec.get(s.Original)
	if s.Stage == StageEventCategory {
		return Result{Done: true}, true
	}
	for i, stage := range editOrder {
		if stage == s.Stage {
			s.Stage = editOrder[i+1]
			break
		}
	}
	return Result{}, true
}

// DraftEvent assembles a creation draft into an event skeleton. Identity,
// timestamps and link normalization are stamped by the catalog on submit.
func (s *Session) DraftEvent() model.Event {
	return model.Event{
		Name:        s.Draft["name"],
		Description: s.Draft["description"],
		Location:    s.Draft["location"],
		Time:        s.Draft["time"],
		TgLink:      s.Draft["tg_link"],
		TgChatLink:  s.Draft["tg_chat_link"],
		Category:    s.Draft["category"],
	}
}

// DraftUpdate assembles an edit draft into a sparse update carrying only the
// fields the dialogue collected.
func (s *Session) DraftUpdate() model.EventUpdate {
	var upd model.EventUpdate
	if v, ok := s.Draft["name"]; ok {
		upd.Name = &v
	}
	if v, ok := s.Draft["description"]; ok {
		upd.Description = &v
	}
	if v, ok := s.Draft["location"]; ok {
		upd.Location = &v
	}
	if v, ok := s.Draft["time"]; ok {
		upd.Time = &v
	}
	if v, ok := s.Draft["tg_link"]; ok {
		upd.TgLink = &v
	}
	if v, ok := s.Draft["tg_chat_link"]; ok {
		upd.TgChatLink = &v
	}
	if v, ok := s.Draft["category"]; ok {
		upd.Category = &v
	}
	return upd
}
