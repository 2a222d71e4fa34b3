package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/NgigiN/fundfusion/internal/command"
)

// isBatchMessage reports whether the message holds more than one command line.
func isBatchMessage(content string) bool {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), command.Prefix) {
			count++
		}
	}
	return count > 1
}

// handleBatch runs each command line in order and reports every result.
// A failing line does not stop the rest.
func (b *Bot) handleBatch(ctx context.Context, content string) string {
	var results []string
	successCount, errorCount := 0, 0

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, command.Prefix) {
			continue
		}

		cmd, err := command.Parse(line)
		if err != nil {
			errorCount++
			results = append(results, fmt.Sprintf("Line %d: %v", i+1, err))
			continue
		}

		reply := b.run(ctx, cmd)
		if strings.HasPrefix(reply, "❌") || strings.HasPrefix(reply, "Failed") {
			errorCount++
		} else {
			successCount++
		}
		results = append(results, fmt.Sprintf("Line %d: %s", i+1, reply))
	}

	response := "📊 **Batch Processing Complete**\n"
	response += fmt.Sprintf("✅ **Succeeded**: %d commands\n", successCount)
	if errorCount > 0 {
		response += fmt.Sprintf("❌ **Failed**: %d commands\n", errorCount)
	}
	for _, r := range results {
		response += fmt.Sprintf("• %s\n", r)
	}
	return response
}
