// Package concierge asks a generative model to recommend watches from the
// current catalog.
package concierge

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

const (
	MsgUnavailable = "Lo siento, el asistente inteligente no está disponible en este momento."
	MsgConnectFail = "Lo siento, hubo un error al conectar con el asistente inteligente."
	MsgNoAnswer    = "Lo siento, no pude generar una recomendación en este momento."
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Concierge struct {
	gen Generator
	log *log.Entry
}

// New accepts a nil generator; every answer is then MsgUnavailable.
func New(gen Generator, logger *log.Entry) *Concierge {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Concierge{gen: gen, log: logger.WithField("component", "concierge")}
}

// Recommend always answers with displayable text.
func (c *Concierge) Recommend(ctx context.Context, query string, products []shop.Product) string {
	if c == nil || c.gen == nil {
		return MsgUnavailable
	}
	text, err := c.gen.Generate(ctx, Prompt(query, products))
	if err != nil {
		c.log.WithError(err).Error("generate recommendation")
		return MsgConnectFail
	}
	if strings.TrimSpace(text) == "" {
		return MsgNoAnswer
	}
	return text
}

func Prompt(query string, products []shop.Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("- %s (%s): $%s, Type: %s. Desc: %s", p.Name, p.Brand, p.Price.String(), p.Category, p.Description))
	}
	return fmt.Sprintf(`You are an expert luxury watch concierge for "TimeStore".

User Query: "%s"

Available Inventory:
%s

Task: Recommend 1-2 watches from the inventory that best match the user's query.
Explain why in a sophisticated, professional, yet concise tone.
If no specific watch fits perfectly, suggest the closest match based on style or price.
Do not invent products not in the list.
`, query, strings.Join(lines, "\n"))
}
