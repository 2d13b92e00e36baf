// Package tui is the interactive chat surface over the query pipeline.
// Chat history lives only in the model; the pipeline itself is stateless.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"nhsrag/internal/domain"
)

// QueryPort is the TUI-facing subset of the query pipeline.
type QueryPort interface {
	Run(ctx context.Context, query, model string, topK int, source string) <-chan domain.StreamChunk
}

// Options carries the per-query settings the chat applies to every turn.
type Options struct {
	Model  string
	TopK   int
	Source string
}

type turn struct {
	question  string
	answer    strings.Builder
	citations []domain.Citation
	done      bool
	faulted   bool
}

type chunkMsg domain.StreamChunk

type streamDoneMsg struct{}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	pipeline QueryPort
	opts     Options

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	turns     []*turn
	stream    <-chan domain.StreamChunk
	cancel    context.CancelFunc
	streaming bool
	status    string
	width     int
	ready     bool
}

// New creates a new chat model instance.
func New(pipeline QueryPort, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "e.g., What are the symptoms of ADHD?"
	ti.Focus()
	ti.CharLimit = 1000
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		opts:     opts,
		input:    ti,
		spin:     sp,
		viewport: vp,
		status:   fmt.Sprintf("Ready. Model: %s", opts.Model),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and stream events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header, input frame, status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.renderer = newRenderer(m.viewport.Width)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.stopStream()
			return m, tea.Quit
		}
		switch msg.String() {
		case "esc":
			if m.streaming {
				m.stopStream()
				m.currentTurn().done = true
				m.status = "Stopped."
				m.refresh()
			}
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.streaming {
				return m.startQuery(q)
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}

	case chunkMsg:
		if !m.streaming || m.stream == nil {
			return m, nil
		}
		t := m.currentTurn()
		if t != nil {
			t.answer.WriteString(msg.Text)
			t.citations = msg.Citations
			if msg.Fault {
				t.faulted = true
			}
			m.refresh()
		}
		return m, tea.Batch(waitForChunk(m.stream), m.spin.Tick)

	case streamDoneMsg:
		m.stopStream()
		if t := m.currentTurn(); t != nil {
			t.done = true
		}
		m.status = fmt.Sprintf("Ready. Model: %s", m.opts.Model)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.streaming {
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("NHS Clinical Assistant")
	input := inputBoxStyle.Render(m.input.View())
	status := m.status
	if m.streaming {
		status = m.spin.View() + " Retrieving relevant NHS information..."
	}
	return header + "\n" + m.viewport.View() + "\n" + input + "\n" + statusStyle.Render(status)
}

func (m *Model) startQuery(q string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.stream = m.pipeline.Run(ctx, q, m.opts.Model, m.opts.TopK, m.opts.Source)
	m.turns = append(m.turns, &turn{question: q})
	m.streaming = true
	m.input.Reset()
	m.refresh()
	return *m, tea.Batch(waitForChunk(m.stream), m.spin.Tick)
}

// stopStream cancels the query context, which tears down the backend
// connection even when chunks remain unread.
func (m *Model) stopStream() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.stream = nil
	m.streaming = false
}

func (m *Model) currentTurn() *turn {
	if len(m.turns) == 0 {
		return nil
	}
	return m.turns[len(m.turns)-1]
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	if len(m.turns) == 0 {
		return "Ask questions and get relevant information from trusted NHS health condition sources."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: "+t.question) + "\n\n")
		b.WriteString(m.renderAnswer(t))
		if t.done && len(t.citations) > 0 {
			b.WriteString("\n" + renderSources(t.citations))
		}
	}
	return b.String()
}

func (m Model) renderAnswer(t *turn) string {
	text := t.answer.String()
	if t.faulted {
		return faultStyle.Render(text)
	}
	// Markdown rendering only once the stream settles; partial markdown
	// renders poorly.
	if t.done && m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return text
}

func renderSources(citations []domain.Citation) string {
	var b strings.Builder
	b.WriteString(sourceHeaderStyle.Render("Sources:"))
	for i, c := range citations {
		b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, c.CleanSection))
		if c.URL != "" {
			b.WriteString("  " + urlStyle.Render(c.URL))
		}
	}
	return b.String()
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return nil
	}
	return r
}

var (
	headerStyle       = lipgloss.NewStyle().Bold(true)
	inputBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	urlStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Underline(true)
)

func waitForChunk(ch <-chan domain.StreamChunk) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-ch
		if !ok {
			return streamDoneMsg{}
		}
		return chunkMsg(chunk)
	}
}
