package prompts

// MaterialLimit caps how much corpus text goes into a generation prompt.
const (
	MaterialLimitCloud = 5000
	MaterialLimitLocal = 4000
)

func RegisterAll() {
	// ---------- Assessment ----------

	RegisterSpec(Spec{
		Name:    PromptQuizCloud,
		Version: 1,
		Text: `
You are an educational quiz generator. Create {{.Count}} multiple-choice questions from these materials.
Rules:
- EXACTLY 4 options per item.
- The field "answer" MUST be the EXACT TEXT of one of the options.
- Output ONLY a minified JSON array (no markdown, code fences or commentary), schema:
[{"question":"...","options":["A","B","C","D"],"answer":"A"}]
Do not include any extra fields.

Materials:
{{.Material}}`,
		Validators: []Validator{
			RequireNonEmpty("Material", func(in Input) string { return in.Material }),
			RequirePositive("Count", func(in Input) int { return in.Count }),
		},
	})

	RegisterSpec(Spec{
		Name:    PromptQuizLocal,
		Version: 1,
		Text: `
You are a pedagogy-savvy quiz generator.
Create {{.Count}} multiple-choice questions that assess understanding and application (avoid pure definition "What is X" stems unless unavoidable).
Rules:
- Each item must have a clear, concise stem (purpose, effect, next step, choose the correct statement).
- Exactly 4 options per item. Use plausible distractors from the provided material.
- Provide the correct option text in the field "answer".
Output ONLY a minified JSON array (no markdown, no prefaces), format:
[{"question":"...","options":["A","B","C","D"],"answer":"A"}]

Material:
{{.Material}}`,
		Validators: []Validator{
			RequireNonEmpty("Material", func(in Input) string { return in.Material }),
			RequirePositive("Count", func(in Input) int { return in.Count }),
		},
	})

	RegisterSpec(Spec{
		Name:    PromptQuizEcho,
		Version: 1,
		Text: `
You will be given a JSON array of multiple-choice quiz items. Output ONLY a minified JSON array in this exact schema:
[{"question":"...","options":["A","B","C","D"],"answer":"A"}]
Return EXACTLY the same array (no changes, no commentary, no code fences, no extra whitespace). Just echo the input:
{{.ItemsJSON}}`,
		Validators: []Validator{
			RequireNonEmpty("ItemsJSON", func(in Input) string { return in.ItemsJSON }),
		},
	})

	RegisterSpec(Spec{
		Name:    PromptTopicMiniQuiz,
		Version: 1,
		Text: `
Create {{.Count}} concise multiple-choice quiz question(s) to test understanding of: "{{.Topic}}".
Rules:
- Focus on educational, conceptual understanding.
- Each question must have exactly 4 options.
- Mark the correct option by index (0-based).
Output ONLY a minified JSON array, no markdown fences, matching this schema:
[{"question":"...","options":["A","B","C","D"],"correctIndex":1}]`,
		Validators: []Validator{
			RequireNonEmpty("Topic", func(in Input) string { return in.Topic }),
			RequirePositive("Count", func(in Input) int { return in.Count }),
		},
	})

	// ---------- Roadmap ----------

	RegisterSpec(Spec{
		Name:    PromptCheckpoints,
		Version: 1,
		Text: `
You are an expert curriculum designer. From the following study materials, extract the core lesson topics ("checkpoints") a student should master, and order them logically from foundational to advanced.
Return ONLY a minified JSON array of objects in this exact format (no markdown, no commentary):
[{"checkpoint":"Topic 1","order":1},{"checkpoint":"Topic 2","order":2}]
Limit to {{.Count}} items.

Materials:
{{.Material}}`,
		Validators: []Validator{
			RequireNonEmpty("Material", func(in Input) string { return in.Material }),
			RequirePositive("Count", func(in Input) int { return in.Count }),
		},
	})

	// ---------- Media ----------

	RegisterSpec(Spec{
		Name:    PromptVideoLinks,
		Version: 1,
		Text: `
Provide ONLY a minified JSON array (no markdown fences) of YouTube LEARNING videos for the topic "{{.Topic}}".
Rules:
- Focus on high-quality tutorials, lectures, or course content.
- EXCLUDE meme, music and other non-educational videos.
- Prefer reputable channels (universities, official sources, expert educators).
- Return direct video links only: "https://www.youtube.com/watch?v=...", "https://youtu.be/..." or "https://www.youtube.com/shorts/...".
Format: up to {{.Count}} items, JSON only, each object with keys: url, title.
Example: [{"url":"https://www.youtube.com/watch?v=abc","title":"Intro Lecture"}]`,
		Validators: []Validator{
			RequireNonEmpty("Topic", func(in Input) string { return in.Topic }),
		},
	})

	// ---------- Tutor ----------

	RegisterSpec(Spec{
		Name:    PromptTutorReply,
		Version: 1,
		Text: `
Persona: {{.Persona}}. {{.PersonaGuide}}
Tone & style: educational and clear. Avoid hallucinations.
Constraints:
- Keep replies concise (2-6 sentences) unless asked for more.
- Use the current topic "{{.Topic}}" as context.
- If uncertain, ask a clarifying follow-up question.
- Provide simple examples or steps when helpful.

Conversation so far:
{{.Conversation}}
User: {{.UserMessage}}

Tutor:`,
		Validators: []Validator{
			RequireNonEmpty("UserMessage", func(in Input) string { return in.UserMessage }),
		},
	})
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
