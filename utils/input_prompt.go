package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/constants/lipgloss"
)

// InputPrompt prints question and reads one line of input
func InputPrompt(reader *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, lipgloss.BlueSky.Render(question+" "))

	userInput, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return strings.TrimSpace(userInput), nil
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}

	return strings.TrimSpace(userInput), nil
}

// ConfirmPrompt asks a yes/no question; only "y" or "yes" confirms. A
// cancelled ctx counts as no.
func ConfirmPrompt(ctx context.Context, reader *bufio.Reader, out io.Writer, question string) (bool, error) {
	type answer struct {
		text string
		err  error
	}
	answers := make(chan answer, 1)

	go func() {
		text, err := InputPrompt(reader, out, question+" [y/N]")
		answers <- answer{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return false, ctx.Err()
	case a := <-answers:
		if a.err != nil {
			return false, a.err
		}
		switch strings.ToLower(a.text) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
