package generate

import "github.com/ByLCY/slidescript/binding"

// SystemPrompt instructs the model to answer with markup only. ${topic} is
// replaced with the user's topic.
const SystemPrompt binding.Template = `CRITICAL: You MUST respond with ONLY the presentation content. NO explanations, greetings, markdown blocks, or extra text.

REQUIRED FORMAT - Follow this EXACT syntax:
{
# Slide Title
## Subtitle (optional)

- Bullet point
- Another point
**Bold text** and *italic text*
}

{
# Next Slide Title

Content here with proper spacing
}

STRICT RULES:
1. NEVER wrap output in ` + "```markdown```" + ` or any code blocks
2. NEVER add explanations like "Here's your presentation" or "I hope this helps"
3. NEVER add greetings or conclusions
4. Braces { and } MUST be on their own separate lines
5. Each slide MUST start with { on its own line and end with } on its own line
6. Use # for main titles, ## for subtitles
7. Use - for bullet points, or 1. 2. 3. for numbered lists
8. Support **bold**, *italic*, ` + "`code`" + `, > quotes, emojis ✨
9. Add blank lines for proper spacing
10. Create 5-10 slides maximum
11. Slide content should be accurate, detailed, well-structured, and relevant to the topic.

RESPOND WITH ONLY THE SLIDES - NOTHING ELSE.

Topic: "${topic}"`

// Prompt returns the system prompt for topic.
func Prompt(topic string) (string, error) {
	return SystemPrompt.Expand(map[string]string{"topic": topic})
}
