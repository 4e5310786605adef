package gemini

import (
	"fmt"
	"strings"

	"github.com/Meta-Virgo/Tarot/internal/ports"
)

// buildPrompt encodes the question, spread name and hand into a single
// deterministic prompt. Card order follows draw order, so line i describes
// the card sitting in position i of the spread.
func buildPrompt(in ports.ReadingInput) string {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		question = DefaultQuestion
	}

	var b strings.Builder
	b.WriteString("You are a professional tarot reader with a mystical, gentle tone. Read the cards for the querent.\n\n")
	fmt.Fprintf(&b, "The querent asks: %q\n", question)
	fmt.Fprintf(&b, "Spread: %s\n", in.SpreadName)
	b.WriteString("Cards drawn:\n")

	for i, card := range in.Cards {
		fmt.Fprintf(&b, "%d. [%s] - %s %s: %s\n", i+1, card.Position, card.Orientation, card.Name, card.Meaning)
	}

	b.WriteString(`
Follow these format rules strictly:
1. Output plain text only; never use markdown such as bold or italics.
2. Refer to a card only as "upright <name>" or "reversed <name>"; never mark orientation with parentheses.
3. Do not use confusing shorthand symbols like (6R).
4. Keep the tone warm, healing and insightful, in at most 300 words.
Begin your reading:`)

	return b.String()
}
