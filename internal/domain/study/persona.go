package study

import "strings"

type Persona string

const (
	PersonaEncouragingCoach Persona = "Encouraging Coach"
	PersonaSocraticMentor   Persona = "Socratic Mentor"
	PersonaConciseExpert    Persona = "Concise Expert"
	PersonaPatientExplainer Persona = "Patient Explainer"
	PersonaPlayfulBuddy     Persona = "Playful Buddy"
)

var personaGuides = map[Persona]string{
	PersonaEncouragingCoach: "Be warm and motivating. Celebrate small wins and keep the learner going.",
	PersonaSocraticMentor:   "Guide with questions. Nudge the learner to reason their way to the answer.",
	PersonaConciseExpert:    "Be brief and precise. Prefer short, correct statements over long explanations.",
	PersonaPatientExplainer: "Explain step by step in plain language, checking understanding as you go.",
	PersonaPlayfulBuddy:     "Keep it light and friendly, using simple analogies and a little humour.",
}

// Personas lists the tutor personas in display order.
func Personas() []Persona {
	return []Persona{
		PersonaEncouragingCoach,
		PersonaSocraticMentor,
		PersonaConciseExpert,
		PersonaPatientExplainer,
		PersonaPlayfulBuddy,
	}
}

// ParsePersona matches case-insensitively and falls back to the coach.
func ParsePersona(raw string) (Persona, bool) {
	raw = strings.TrimSpace(raw)
	for _, p := range Personas() {
		if strings.EqualFold(raw, string(p)) {
			return p, true
		}
	}
	return PersonaEncouragingCoach, false
}

func (p Persona) Guide() string {
	if g, ok := personaGuides[p]; ok {
		return g
	}
	return personaGuides[PersonaEncouragingCoach]
}
