// Package seed holds the built-in assessment definitions and installs them
// on startup.
package seed

import (
	"fmt"

	"dating_scan_backend/internal/model"
)

const (
	DatingStyleID     = "dating_style"
	AttachmentStyleID = "attachment_style"
)

type statement struct {
	text     string
	group    string
	reversed bool
}

type option struct {
	text string
	dims []string
}

type scenario struct {
	text    string
	options []option
}

type blueprint struct {
	id, title, description string
	version                int
	dimensions             []string
	groups                 map[string]string
	statements             []statement
	scenarios              []scenario
}

// Definitions returns fresh copies of the built-in definitions, statements
// first and then scenarios, with positions 1..n.
func Definitions() []model.AssessmentDefinition {
	return []model.AssessmentDefinition{
		build(datingStyle),
		build(attachmentStyle),
	}
}

func build(s blueprint) model.AssessmentDefinition {
	def := model.AssessmentDefinition{
		ID:              s.id,
		Title:           s.title,
		Description:     s.description,
		Version:         s.version,
		Dimensions:      model.MustJSON(s.dimensions),
		GroupDimensions: model.MustJSON(s.groups),
		IsPublished:     true,
	}

	pos := 0
	prefix := shortPrefix(s.id)
	for i, st := range s.statements {
		pos++
		def.Questions = append(def.Questions, model.AssessmentQuestion{
			ID:              fmt.Sprintf("%s-s%02d", prefix, i+1),
			DefinitionID:    s.id,
			Kind:            "statement",
			Text:            st.text,
			DimensionGroup:  st.group,
			IsReverseScored: st.reversed,
			Weight:          1,
			OrderPosition:   pos,
		})
	}
	for i, sc := range s.scenarios {
		pos++
		qid := fmt.Sprintf("%s-c%02d", prefix, i+1)
		q := model.AssessmentQuestion{
			ID:            qid,
			DefinitionID:  s.id,
			Kind:          "scenario",
			Text:          sc.text,
			Weight:        1,
			OrderPosition: pos,
		}
		for j, o := range sc.options {
			q.Options = append(q.Options, model.ScenarioOption{
				ID:            fmt.Sprintf("%s-%c", qid, 'a'+j),
				QuestionID:    qid,
				Text:          o.text,
				Dimensions:    model.MustJSON(o.dims),
				Weight:        1,
				OrderPosition: j + 1,
			})
		}
		def.Questions = append(def.Questions, q)
	}
	return def
}

func shortPrefix(id string) string {
	switch id {
	case DatingStyleID:
		return "ds"
	case AttachmentStyleID:
		return "as"
	}
	return id
}

var datingStyle = blueprint{
	id:          DatingStyleID,
	title:       "Dating Style Scan",
	description: "How you approach meeting, courting and getting to know a partner.",
	version:     1,
	dimensions:  []string{"initiator", "planner", "romantic", "realist", "adventurer", "nurturer"},
	groups: map[string]string{
		"initiative": "initiator",
		"structure":  "planner",
		"romance":    "romantic",
		"pragmatism": "realist",
		"novelty":    "adventurer",
		"care":       "nurturer",
	},
	statements: []statement{
		{text: "I am usually the one who sends the first message.", group: "initiative"},
		{text: "I prefer to wait until the other person shows interest first.", group: "initiative", reversed: true},
		{text: "I like to know the plan for a date well in advance.", group: "structure"},
		{text: "I am happy to decide where we go on the day.", group: "structure", reversed: true},
		{text: "Small gestures like handwritten notes matter a lot to me.", group: "romance"},
		{text: "I believe in chemistry at first sight.", group: "romance"},
		{text: "I check whether our long-term goals line up early on.", group: "pragmatism"},
		{text: "I would rather follow my feelings than weigh pros and cons.", group: "pragmatism", reversed: true},
		{text: "I enjoy dates that involve something neither of us has tried.", group: "novelty"},
		{text: "A familiar favourite restaurant is my ideal date.", group: "novelty", reversed: true},
		{text: "I notice quickly when my date is uncomfortable.", group: "care"},
		{text: "I like to make sure the other person feels looked after.", group: "care"},
	},
	scenarios: []scenario{
		{
			text: "You matched with someone interesting two days ago and the chat has gone quiet.",
			options: []option{
				{text: "Send a message suggesting a specific time and place.", dims: []string{"initiator", "planner"}},
				{text: "Send a playful message about something from their profile.", dims: []string{"romantic"}},
				{text: "Wait and see if they reach out.", dims: []string{"realist"}},
			},
		},
		{
			text: "Your date suggests a last-minute change of plan to a place you have never been.",
			options: []option{
				{text: "Go for it, the surprise is half the fun.", dims: []string{"adventurer"}},
				{text: "Look up the place first and suggest a backup.", dims: []string{"planner", "realist"}},
				{text: "Agree if they seem excited about it.", dims: []string{"nurturer"}},
			},
		},
		{
			text: "On a third date the conversation turns to what you both want long term.",
			options: []option{
				{text: "Share openly and ask direct questions back.", dims: []string{"realist", "initiator"}},
				{text: "Describe the kind of story you hope to have together.", dims: []string{"romantic"}},
				{text: "Steer back to lighter topics for now.", dims: []string{"adventurer"}},
				{text: "Listen closely and reassure them there is no rush.", dims: []string{"nurturer"}},
			},
		},
		{
			text: "Your date mentions they had a rough week at work.",
			options: []option{
				{text: "Suggest a relaxed evening in with their favourite food.", dims: []string{"nurturer", "planner"}},
				{text: "Take them somewhere new to take their mind off it.", dims: []string{"adventurer", "initiator"}},
				{text: "Ask what would help and follow their lead.", dims: []string{"nurturer"}},
			},
		},
	},
}

var attachmentStyle = blueprint{
	id:          AttachmentStyleID,
	title:       "Attachment Style Scan",
	description: "How you relate to closeness, reassurance and independence in relationships.",
	version:     1,
	dimensions:  []string{"secure", "anxious", "avoidant", "anxious_avoidant"},
	groups: map[string]string{
		"trust":        "secure",
		"reassurance":  "anxious",
		"independence": "avoidant",
		"ambivalence":  "anxious_avoidant",
	},
	statements: []statement{
		{text: "I find it easy to depend on a partner.", group: "trust"},
		{text: "I worry that a partner will leave when things get hard.", group: "trust", reversed: true},
		{text: "I feel comfortable talking about my needs.", group: "trust"},
		{text: "When a partner does not reply for hours I start to feel uneasy.", group: "reassurance"},
		{text: "I often need to hear that I am loved.", group: "reassurance"},
		{text: "I feel most like myself when I have plenty of time alone.", group: "independence"},
		{text: "I get uncomfortable when a partner wants to be very close.", group: "independence"},
		{text: "I am happy to share everything about my life with a partner.", group: "independence", reversed: true},
		{text: "I want closeness but pull away once I have it.", group: "ambivalence"},
		{text: "I am unsure whether I can trust the people I get close to.", group: "ambivalence"},
	},
	scenarios: []scenario{
		{
			text: "Your partner cancels plans at the last minute without much explanation.",
			options: []option{
				{text: "Ask if everything is okay and reschedule.", dims: []string{"secure"}},
				{text: "Wonder whether they are losing interest.", dims: []string{"anxious"}},
				{text: "Shrug it off and make other plans.", dims: []string{"avoidant"}},
				{text: "Feel hurt but tell them it does not matter.", dims: []string{"anxious_avoidant", "anxious", "avoidant"}},
			},
		},
		{
			text: "Your partner asks to move in together after six months.",
			options: []option{
				{text: "Talk through what it would mean for both of you.", dims: []string{"secure"}},
				{text: "Say yes quickly so they do not change their mind.", dims: []string{"anxious"}},
				{text: "Feel the urge to slow things down.", dims: []string{"avoidant"}},
			},
		},
		{
			text: "After an argument your partner goes quiet for the evening.",
			options: []option{
				{text: "Give them space and check in later.", dims: []string{"secure"}},
				{text: "Keep messaging until they respond.", dims: []string{"anxious"}},
				{text: "Withdraw too and wait for them to come to you.", dims: []string{"avoidant"}},
				{text: "Alternate between reaching out and shutting down.", dims: []string{"anxious_avoidant"}},
			},
		},
		{
			text: "A friend says your partner seems more invested than you are.",
			options: []option{
				{text: "Reflect on it and talk with your partner.", dims: []string{"secure"}},
				{text: "Feel relieved that you have the upper hand.", dims: []string{"avoidant"}},
				{text: "Worry that you are doing the relationship wrong.", dims: []string{"anxious", "anxious_avoidant"}},
			},
		},
	},
}
