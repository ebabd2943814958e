package protocol

import (
	"fmt"
	"strings"
)

// Response formats a reply to a single player
func Response(msg string) string {
	return msg
}

// Responsef formats a reply to a single player
func Responsef(format string, a ...interface{}) string {
	return Response(fmt.Sprintf(format, a...))
}

// Error formats an error reported to a single player
func Error(msg string) string {
	return "Error: " + msg
}

// Broadcast formats a message sent to everyone in a hub
func Broadcast(msg string) string {
	return "* " + msg
}

// Chat formats something a player said
func Chat(name, msg string) string {
	return fmt.Sprintf("<%s> %s", name, msg)
}

// List formats items one per line
func List(items []string) string {
	if len(items) == 0 {
		return "  (none)"
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "  - "+item)
	}
	return strings.Join(lines, "\n")
}
