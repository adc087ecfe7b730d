package document

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"briefroom.app/relay/internal/model"
)

// Extractor turns raw file bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, mediaType, name string, data []byte) (string, error)
}

// Fetcher downloads a document from its retrieval locator.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Assembler builds the document context block appended to analysis prompts.
// It knows nothing about session types or roles.
type Assembler struct {
	fetcher   Fetcher
	extractor Extractor
}

func NewAssembler(fetcher Fetcher, extractor Extractor) *Assembler {
	return &Assembler{fetcher: fetcher, extractor: extractor}
}

// Assemble extracts every document in order. A document that can't be fetched
// or parsed becomes a placeholder line; it never fails the whole call.
func (a *Assembler) Assemble(ctx context.Context, docs []model.DocumentRef) string {
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	for _, doc := range docs {
		text, err := a.extract(ctx, doc)
		if err != nil {
			slog.WarnContext(ctx, "document extraction failed",
				"document_name", doc.Name,
				"media_type", doc.MediaType,
				"error", err)
			writeBlock(&b, Placeholder(doc.Name))
			continue
		}
		if strings.TrimSpace(text) == "" {
			slog.DebugContext(ctx, "document has no text, skipping", "document_name", doc.Name)
			continue
		}
		writeBlock(&b, Wrap(doc.Name, text))
	}
	return b.String()
}

func (a *Assembler) extract(ctx context.Context, doc model.DocumentRef) (string, error) {
	if doc.URL == "" {
		return "", fmt.Errorf("document %q has no url", doc.Name)
	}
	data, err := a.fetcher.Fetch(ctx, doc.URL)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	text, err := a.extractor.Extract(ctx, doc.MediaType, doc.Name, data)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	return text, nil
}

// Wrap delimits one document's text.
func Wrap(name, text string) string {
	return fmt.Sprintf("--- DOCUMENT: %s ---\n%s\n--- END DOCUMENT ---", name, strings.TrimSpace(text))
}

func Placeholder(name string) string {
	return fmt.Sprintf("[could not extract text from: %s]", name)
}

func writeBlock(b *strings.Builder, block string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(block)
}
