package generation

import "strings"

// NoFeedbackPlaceholder stands in for an empty feedback history so the model is
// always told explicitly whether feedback exists.
const NoFeedbackPlaceholder = "No previous feedback"

const systemPrompt = "You are an expert LinkedIn content writer with 10+ years of experience " +
	"creating viral, engaging posts that drive meaningful professional conversations."

const instructions = `Generate a professional, engaging LinkedIn post based on the given topic.
Consider ALL previous human feedback to refine and improve the response.

Make it:
- Professional yet conversational
- Include relevant hashtags
- Have a clear call-to-action
- Be engaging and valuable to the LinkedIn audience`

// Prompt represents the system prompt + the content to send as "user".
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the fixed template for a topic and the feedback history,
// keeping feedback in the order it was given.
func BuildPrompt(topic string, feedbackHistory []string) Prompt {
	feedback := strings.Join(feedbackHistory, "\n")
	if len(feedbackHistory) == 0 {
		feedback = NoFeedbackPlaceholder
	}

	var user strings.Builder
	user.WriteString("LinkedIn topic: ")
	user.WriteString(topic)
	user.WriteString("\nPrevious human feedback: ")
	user.WriteString(feedback)
	user.WriteString("\n\n")
	user.WriteString(instructions)

	return Prompt{
		System: systemPrompt,
		User:   user.String(),
	}
}
