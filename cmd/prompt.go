package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/podfix/internal/tasks"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

const promptHint = "[Enter] continue  [b N] batch size  [q] stop > "

// promptControl returns a ControlFunc that pauses between batches and asks
// the operator how to proceed. The pipeline is strictly sequential, so
// reading stdin here blocks nothing but the next fetch.
func (r *Runner) promptControl() tasks.ControlFunc {
	scanner := bufio.NewScanner(r.input)

	return func(point tasks.ControlPoint) tasks.Decision {
		switch point.Mode {
		case tasks.ControlPreProcess:
			r.writePlain("\n%s\n", promptStyle.Render(fmt.Sprintf(
				"Podcast has %d episodes (%d already processed). Page %d, batch size %d.",
				point.Run.Total, point.Run.Processed, point.Page, point.BatchSize)))
		case tasks.ControlBatchComplete:
			r.writePlain("\n%s\n", promptStyle.Render(fmt.Sprintf(
				"Page %d done: %d ok, %d failed, %d skipped (%d/%d overall).",
				point.Page, point.Batch.Success, point.Batch.Failed, point.Batch.Skipped,
				point.Run.Processed, point.Run.Total)))
		case tasks.ControlPageError:
			r.writePlain("\n%s\n", errStyle.Render(fmt.Sprintf(
				"✗ Failed to fetch page %d: %v", point.Page, point.Err)))
		}

		r.writePlain("%s", helpStyle.Render(promptHint))

		for {
			if !scanner.Scan() {
				// Stdin closed under us; stopping beats looping forever
				return tasks.Decision{Continue: false}
			}

			input := strings.TrimSpace(scanner.Text())
			switch {
			case input == "" || input == "y" || input == "c":
				return tasks.Decision{Continue: true}
			case input == "q" || input == "n":
				return tasks.Decision{Continue: false}
			case strings.HasPrefix(input, "b"):
				size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(input, "b")))
				if err != nil || size <= 0 {
					r.writePlain("Invalid batch size. %s", helpStyle.Render(promptHint))
					continue
				}
				return tasks.Decision{Continue: true, BatchSize: size}
			default:
				r.writePlain("Unrecognized input. %s", helpStyle.Render(promptHint))
			}
		}
	}
}

// confirm asks a yes/no question and reports the answer.
func (r *Runner) confirm(question string) (bool, error) {
	r.writePlain("%s [y/N] ", question)

	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("failed to read input: %w", err)
		}
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
