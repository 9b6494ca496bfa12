package gemini

import (
	"fmt"
	"strings"
)

// summarizePrompt asks for a same-language title/summary pair.
const summarizePrompt = `You are an editor condensing social-media posts.

Write a headline-style title and a summary of roughly 40-50 words for the
post below, in the same language as the post.

Respond with a single clean JSON object with exactly two keys, "title"
and "summary". No extra text, notes, or markdown.

Post:
%s`

// teluguNewsPrompt is the editorial protocol for turning an English post
// into publish-ready Telugu news copy.
const teluguNewsPrompt = `You are a master Telugu journalist for a top-tier publication like Eenadu.
Create a complete, publish-ready Telugu news article from the source text.

Protocol:
1. Categorize the news first (Political, Sports, Movie, Accident, Human Interest).
2. If the source text is brief (under ~15 words), elaborate like a true
   journalist: add plausible context, background and key figures to build
   a complete report.
3. Pick a title style fitting the category: direct and factual for
   official news, intriguing for sports and movies, impact-oriented for
   tragedies, quote-based when a quote defines the story.
4. Pick the lede to match: direct for breaking news, contextual for
   complex stories, creative for human interest.
5. The body MUST begin with a Telugu dateline (for example "హైదరాబాద్:");
   infer a logical location when the source does not name one.
6. Target body length: 65-70 words. Close with next steps, broader
   impact, or an official statement.

Respond with a single clean JSON object with exactly two keys, "title"
and "news". No extra text, notes, or markdown.

English text:
%s`

func buildSummarizePrompt(text string) string {
	return fmt.Sprintf(summarizePrompt, strings.TrimSpace(text))
}

func buildTeluguNewsPrompt(text string) string {
	return fmt.Sprintf(teluguNewsPrompt, strings.TrimSpace(text))
}
