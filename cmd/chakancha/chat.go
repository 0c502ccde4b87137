package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chakancha/internal/agent"
	"chakancha/internal/store"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant interactively",
	Long: `Starts a terminal chat session with the assistant. Messages go through
the same workflow as the HTTP API: intent detection, FAQ retrieval or DHL
tracking, then response generation. The conversation is persisted like any
other session.

Type "exit" or press Ctrl-D to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := buildAgent(s)
	if err != nil {
		return err
	}

	conv, err := s.GetOrCreateConversation(uuid.NewString())
	if err != nil {
		return err
	}
	sessionID := conv.SessionID
	fmt.Println(renderMarkdown("# Chakancha Global Assistant"))
	fmt.Println(metaStyle.Render("session " + sessionID + " | type 'exit' to quit"))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		history := loadHistory(s, sessionID)
		if _, err := s.AddMessage(sessionID, store.RoleUser, line, nil); err != nil {
			fmt.Println(errStyle.Render("warning: failed to save message: " + err.Error()))
		}

		resp := engine.Process(cmd.Context(), line, sessionID, history)
		if _, err := s.AddMessage(sessionID, store.RoleAssistant, resp.Reply, map[string]string{
			"intent": string(resp.Intent),
		}); err != nil {
			fmt.Println(errStyle.Render("warning: failed to save reply: " + err.Error()))
		}

		fmt.Println(renderMarkdown(resp.Reply))
		fmt.Println(metaStyle.Render(fmt.Sprintf("[%s, %dms]", resp.Intent, resp.ResponseTimeMS)))
		if resp.Error != "" {
			fmt.Println(errStyle.Render("warning: " + resp.Error))
		}
		fmt.Println()
	}
	return scanner.Err()
}

func loadHistory(s *store.Store, sessionID string) []agent.HistoryMessage {
	msgs, err := s.RecentMessages(sessionID, cfg.Server.HistoryWindow)
	if err != nil {
		return nil
	}
	history := make([]agent.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, agent.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	return history
}

// renderMarkdown pretty-prints markdown for the terminal, falling back to
// the raw text when rendering fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
