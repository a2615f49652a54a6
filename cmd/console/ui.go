package main

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/taleloom/tale-engine/pkg/story"
)

const PlaceHolderText = "Choose an option by number, or type your own action..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	story         *story.Story
	sceneViewport viewport.Model
	metaViewport  viewport.Model
	textarea      textarea.Model
	ready         bool
	width         int
	height        int
	loading       bool
	progressTick  int
	statusLine    string
}

type turnResponseMsg struct {
	story *story.Story
	err   error
}

type progressTickMsg struct{}

var (
	scenePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, st *story.Story) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	sceneVp := viewport.New(50, 20)
	sceneVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:        cfg,
		client:        client,
		story:         st,
		textarea:      ta,
		sceneViewport: sceneVp,
		metaViewport:  metaVp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		sceneWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - sceneWidth - 6

		m.sceneViewport.Width = sceneWidth - 2
		m.sceneViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(sceneWidth - 4)

		m.ready = true
		m.writeSceneContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.story.CurrentScene); err != nil {
				m.statusLine = errorStyle.Render("Copy failed: " + err.Error())
			} else {
				m.statusLine = promptStyle.Render("Scene copied to clipboard.")
			}
			return m, nil

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			choice := m.resolveChoice(input)
			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.statusLine = ""
			m.writeSceneContent()

			return m, tea.Batch(m.sendChoice(choice), progressTick())
		}

	case turnResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.statusLine = errorStyle.Render("Error: " + msg.err.Error())
			m.writeSceneContent()
		} else {
			m.story = msg.story
			m.statusLine = ""
			m.writeSceneContent()
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.sceneViewport.GotoBottom()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeSceneContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.sceneViewport, vpCmd = m.sceneViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// resolveChoice maps a bare number to the matching offered choice; any
// other input is sent verbatim (free-text play is allowed).
func (m ConsoleUI) resolveChoice(input string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.story.Choices) {
		return m.story.Choices[n-1].Text
	}
	return input
}

func (m ConsoleUI) sendChoice(choice string) tea.Cmd {
	return func() tea.Msg {
		st, err := continueStory(m.client, m.config.APIBaseURL, m.story.ID, choice)
		return turnResponseMsg{story: st, err: err}
	}
}

func progressTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func (m *ConsoleUI) writeSceneContent() {
	width := m.sceneViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.story.Title) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, entry := range m.story.History {
		if entry.Scene != "" {
			content.WriteString(historyStyle.Render(wordwrap.String(entry.Scene, width)) + "\n\n")
		}
		content.WriteString(historyStyle.Render("> "+entry.Choice) + "\n\n")
	}

	content.WriteString(sceneStyle.Render(wordwrap.String(m.story.CurrentScene, width)) + "\n\n")

	if len(m.story.Choices) > 0 && !m.loading {
		for i, c := range m.story.Choices {
			line := fmt.Sprintf("%d. %s", i+1, c.Text)
			content.WriteString(choiceStyle.Render(wordwrap.String(line, width)) + "\n")
		}
		content.WriteString("\n")
	}

	if m.loading {
		dots := strings.Repeat(".", m.progressTick%4)
		content.WriteString(loadingStyle.Render("The story unfolds"+dots) + "\n")
	}

	if m.statusLine != "" {
		content.WriteString(m.statusLine + "\n")
	}

	m.sceneViewport.SetContent(content.String())
	m.sceneViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STORY") + "\n\n")

	content.WriteString("Story ID:\n")
	content.WriteString(m.story.ID.String()[:8] + "...\n\n")

	if m.story.Character != nil {
		content.WriteString("Character:\n")
		content.WriteString(m.story.Character.Name + "\n\n")
	}

	content.WriteString("Mood:\n")
	content.WriteString(m.story.Context.Mood + "\n\n")

	content.WriteString(fmt.Sprintf("Turns:\n%d\n\n", len(m.story.History)))

	if len(m.story.Context.WorldState) > 0 {
		content.WriteString("World:\n")
		keys := make([]string, 0, len(m.story.Context.WorldState))
		for k := range m.story.Context.WorldState {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			content.WriteString(fmt.Sprintf("• %s: %v\n", k, m.story.Context.WorldState[k]))
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy scene\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Initializing..."
	}

	scenePanel := scenePanelStyle.Render(
		m.sceneViewport.View() + "\n\n" + m.textarea.View(),
	)
	metaPanel := metaPanelStyle.Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, scenePanel, metaPanel)
}
