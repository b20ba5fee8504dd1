package prompts

type PromptName string

const (
	// Assessment
	PromptQuizCloud     PromptName = "quiz_cloud"
	PromptQuizLocal     PromptName = "quiz_local"
	PromptQuizEcho      PromptName = "quiz_echo"
	PromptTopicMiniQuiz PromptName = "topic_mini_quiz"

	// Roadmap
	PromptCheckpoints PromptName = "checkpoints"

	// Media
	PromptVideoLinks PromptName = "video_links"

	// Tutor
	PromptTutorReply PromptName = "tutor_reply"
)
