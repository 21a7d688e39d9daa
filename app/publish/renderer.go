package publish

import (
	"fmt"
	"strings"

	"congresswire/app/database"
)

// CharLimit is the Bluesky post length ceiling.
const CharLimit = 300

// Renderer turns stored items into post text. Rendering is a pure
// function of the item, so a dry run and a real run produce identical
// output for identical rows.
type Renderer struct{}

// NewRenderer creates a new post renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Run renders the item into a single post within CharLimit.
func (r *Renderer) Run(item database.Item) string {
	var text string

	switch item.Kind {
	case database.KindVote:
		text = r.renderVote(item)
	case database.KindBill:
		text = r.renderBill(item)
	case database.KindSpeech:
		text = r.renderSpeech(item)
	default:
		text = item.Title
	}

	return truncate(text, CharLimit)
}

func (r *Renderer) renderVote(item database.Item) string {
	result := strings.ToUpper(item.Result)
	if result == "" {
		result = "VOTED"
	}

	title := item.Title
	if title == "" {
		title = "Roll call vote"
	}

	text := fmt.Sprintf("[%s] %s", result, title)
	if summary := item.BestSummary(); summary != "" {
		text += "\n" + summary
	}
	return text
}

func (r *Renderer) renderBill(item database.Item) string {
	title := item.Title
	if title == "" {
		title = "Untitled bill"
	}

	if summary := item.BestSummary(); summary != "" {
		return title + "\n" + summary
	}
	if item.Result != "" {
		return title + "\nAction: " + item.Result
	}
	return title
}

func (r *Renderer) renderSpeech(item database.Item) string {
	speaker := item.Sponsor
	if speaker == "" {
		speaker = "Unknown speaker"
	}

	if summary := item.BestSummary(); summary != "" {
		return speaker + ": " + summary
	}
	if item.Title != "" {
		return speaker + " on " + item.Title
	}
	return speaker + " spoke on the floor"
}

// truncate cuts text to fit limit, appending an ellipsis when content
// was dropped.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
