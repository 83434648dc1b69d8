package ai

import (
	"fmt"
	"strings"
)

// FormatEmail renders the email context block shared by all three
// prompts. Subject and body are capped so long emails stay within
// provider token limits.
func FormatEmail(in EmailInput) string {
	subject := in.Subject
	if subject == "" {
		subject = "No Subject"
	}
	body := in.Body
	if body == "" {
		body = "No content"
	}
	if len(subject) > 200 {
		subject = subject[:200]
	}
	if len(body) > 500 {
		body = body[:500]
	}
	sender := in.SenderName
	if sender == "" {
		sender = "Unknown"
	}
	return fmt.Sprintf("Subject: %s\nBody: %s\nSender: %s (%s)\nHas Attachment: %v",
		subject, body, sender, in.SenderEmail, in.HasAttachment)
}

// BuildClassifyPrompt returns the categorization prompt.
func BuildClassifyPrompt(in EmailInput) string {
	return fmt.Sprintf(`You are an expert email classifier. Analyze the email and categorize it into ONE of these categories:
%s

Consider:
- Email content and tone
- Sender information
- Subject line
- Keywords and context
- Business vs personal nature

Respond in JSON format with these fields:
{
    "category": "selected_category",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation"
}

ONLY return the JSON object, no other text.

EMAIL:
%s`, strings.Join(Categories, ", "), FormatEmail(in))
}

// BuildPrioritizePrompt returns the prioritization prompt.
func BuildPrioritizePrompt(in EmailInput, category string) string {
	priorities := []string{"Critical", "High", "Medium", "Low"}
	return fmt.Sprintf(`You are an expert email prioritization specialist. Analyze the email and assign ONE priority level:
%s

Consider:
- Urgency indicators (URGENT, ASAP, etc.)
- Sender importance
- Email category
- Time sensitivity
- Business impact

Respond in JSON format with these fields:
{
    "priority": "selected_priority",
    "score": 1-100,
    "reasoning": "brief explanation"
}

ONLY return the JSON object, no other text.

EMAIL:
%s
Category: %s
Age: %d days`, strings.Join(priorities, ", "), FormatEmail(in), category, in.AgeDays)
}

// BuildActionPrompt returns the response-architect prompt.
func BuildActionPrompt(in EmailInput, category, priority string) string {
	return fmt.Sprintf(`You are an expert email response strategist. Analyze the email and provide:

1. Recommended Action (choose one): %s
2. Key Information Extracted (dates, names, action items, etc.)
3. Draft Response (if applicable, otherwise "N/A")
4. Reasoning for recommendation

Respond in JSON format with these fields:
{
    "action": "recommended_action",
    "key_info": {
        "dates": [],
        "names": [],
        "action_items": [],
        "other": ""
    },
    "draft_response": "draft email response or N/A",
    "reasoning": "explanation of recommendation"
}

ONLY return the JSON object, no other text.

EMAIL:
%s
Category: %s
Priority: %s`, strings.Join(Actions, ", "), FormatEmail(in), category, priority)
}

// ExtractJSONObject strips markdown fences and surrounding prose from a
// model response, returning the outermost JSON object. Providers are
// asked for bare JSON but do not always comply.
func ExtractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}
