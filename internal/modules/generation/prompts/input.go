package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Corpus excerpt, already truncated by the caller.
	Material string
	// Requested number of records.
	Count int
	// Checkpoint title for topic-scoped prompts.
	Topic string
	// JSON array passed through the echo prompt.
	ItemsJSON string
	// Tutor
	Persona      string
	PersonaGuide string
	Conversation string
	UserMessage  string
}
