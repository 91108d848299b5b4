package usecase

import (
	"fmt"
	"strings"
)

type fallbackRule struct {
	keywords []string
	reply    func(text, senderName string) string
}

// fallbackRules are checked in order; the first rule with a matching keyword wins.
var fallbackRules = []fallbackRule{
	{keywords: []string{"hello", "hi"}, reply: greetingReply},
	{keywords: []string{"project", "fbx"}, reply: func(string, string) string { return projectsReply }},
	{keywords: []string{"contact", "team"}, reply: func(string, string) string { return teamReply }},
}

// Fallback returns a canned reply for text when the completion API cannot be
// used. It is pure and never returns an empty string.
func Fallback(text, senderName string) string {
	lower := strings.ToLower(text)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply(text, senderName)
			}
		}
	}
	return echoReply(text)
}

func greetingReply(_, senderName string) string {
	name := strings.TrimSpace(senderName)
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`Hello %s! 👋

I'm Genii, your Corporate AI Executive Assistant running with Kimi K2.5.

I can help you manage:
• FBX real estate projects
• Mike Schy golf business
• Your team coordination
• Personal tasks

What would you like to work on?`, name)
}

const projectsReply = `📊 FBX Projects:

• Selma LOI - In Progress
• Kerman Walk - Scheduled
• Parkview Appraisal - Pending
• Mike Golf Studio LOI - In Progress

Which project needs attention?`

const teamReply = `👥 Your Team:

• Amber Schy - COO/Operations
• Tony Hunt - Real Estate Agent
• Jonathan Zumwalt - Tentative Maps

Need to reach someone?`

func echoReply(text string) string {
	return fmt.Sprintf(`I received: "%s"

I'm running with Kimi K2.5 as my AI engine. Currently in fallback mode due to API configuration.

I can help with:
• Projects (type "projects")
• Contacts (type "contacts")
• General questions

What do you need?`, text)
}
