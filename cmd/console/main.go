package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taleloom/tale-engine/pkg/story"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    90 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\n")
		os.Exit(1)
	}

	req := promptForCharacter()

	c, err := createCharacter(client, cfg.APIBaseURL, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create character: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nSummoning your opening scene...")
	st, err := createStory(client, cfg.APIBaseURL, c.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create story: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, st),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// promptForCharacter collects the character sheet from stdin. Defaults
// mirror the classic warrior/honor/pride archetype.
func promptForCharacter() CreateCharacterRequest {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Create your character")
	fmt.Println("---------------------")

	name := promptLine(reader, "Name", "")
	for len(name) < story.MinNameLength || len(name) > story.MaxNameLength {
		fmt.Printf("Name must be %d-%d characters.\n", story.MinNameLength, story.MaxNameLength)
		name = promptLine(reader, "Name", "")
	}

	background := promptLine(reader, "Background", "")
	for len(background) < story.MinBackgroundLength {
		fmt.Printf("Background must be at least %d characters.\n", story.MinBackgroundLength)
		background = promptLine(reader, "Background", "")
	}

	return CreateCharacterRequest{
		Name:       name,
		Background: background,
		Traits: story.Traits{
			Class:  promptLine(reader, "Class", "warrior"),
			Virtue: promptLine(reader, "Virtue", "honor"),
			Flaw:   promptLine(reader, "Flaw", "pride"),
		},
	}
}

func promptLine(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return defaultValue
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue
	}
	return line
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
