package utils

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderHighlighted writes source highlighted for a 256 color terminal.
// language is a chroma lexer name such as "json".
func RenderHighlighted(w io.Writer, source string, language string, theme string) error {
	if err := quick.Highlight(w, source, language, "terminal256", theme); err != nil {
		return fmt.Errorf("failed to highlight %s: %w", language, err)
	}
	return nil
}

// RenderHighlightedWithContext highlights line by line and stops early when
// ctx is cancelled.
func RenderHighlightedWithContext(ctx context.Context, w io.Writer, source string, language string, theme string) error {
	lines := strings.SplitAfter(source, "\n")

	for i, line := range lines {
		if i%5 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if line == "" {
			continue
		}
		if err := RenderHighlighted(w, line, language, theme); err != nil {
			return err
		}
	}

	return nil
}
