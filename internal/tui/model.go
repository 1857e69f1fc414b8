package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ilkkao/taito/internal/corpus"
	"github.com/ilkkao/taito/internal/cycle"
	"github.com/ilkkao/taito/internal/model"
	"github.com/ilkkao/taito/internal/progress"
	"github.com/ilkkao/taito/internal/session"
	"github.com/ilkkao/taito/internal/stats"
)

type view int

const (
	viewMenu view = iota
	viewScope
	viewDrill
	viewSummary
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	contextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

var modeLabels = map[model.Mode]string{
	model.ModeRecall:       "Verb recall (fi → en)",
	model.ModeActiveRecall: "Active recall (en → fi)",
	model.ModeConjugation:  "Present conjugation",
	model.ModeImperfect:    "Imperfect conjugation",
	model.ModeVocabulary:   "Vocabulary",
	model.ModeCases:        "Case practice",
	model.ModeGradation:    "Consonant gradation",
	model.ModeReading:      "Reading comprehension",
}

// scopeOption is one toggleable entry on the scope screen.
type scopeOption struct {
	label string
	value string
	group int
}

// Groups on the verb-drill scope screen.
const (
	groupLevel = iota
	groupTavoite
)

// Model implements the Bubble Tea drill UI.
type Model struct {
	corpus   *corpus.Corpus
	tracker  *progress.Tracker
	shuffler *session.Shuffler
	shuffle  bool

	width  int
	height int
	view   view

	menuIndex int
	modes     []model.Mode

	scopeMode  model.Mode
	options    []scopeOption
	selected   map[int]struct{}
	scopeIndex int
	scopeErr   string

	sess     *session.Session
	input    textinput.Model
	passage  viewport.Model
	feedback string
	reveal   bool

	summary   model.Summary
	newRecord bool
	unlocked  model.Mode
	saveErr   string
}

// NewModel constructs the drill UI model.
func NewModel(c *corpus.Corpus, tracker *progress.Tracker, shuffle bool) *Model {
	input := textinput.New()
	input.Placeholder = "vastaus"
	input.CharLimit = 64
	return &Model{
		corpus:   c,
		tracker:  tracker,
		shuffler: session.NewShuffler(),
		shuffle:  shuffle,
		modes:    model.Modes(),
		input:    input,
		passage:  viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.passage.Width = m.contentWidth()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case viewMenu:
			return m.updateMenu(msg)
		case viewScope:
			return m.updateScope(msg)
		case viewDrill:
			return m.updateDrill(msg)
		case viewSummary:
			return m.updateSummary(msg)
		}
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(m.modes)-1 {
			m.menuIndex++
		}
	case "enter":
		mode := m.modes[m.menuIndex]
		if !m.tracker.IsUnlocked(mode) {
			return m, nil
		}
		m.openScope(mode)
	}
	return m, nil
}

func (m *Model) updateScope(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewMenu
	case "up", "k":
		if m.scopeIndex > 0 {
			m.scopeIndex--
		}
	case "down", "j":
		if m.scopeIndex < len(m.options)-1 {
			m.scopeIndex++
		}
	case " ":
		if _, ok := m.selected[m.scopeIndex]; ok {
			delete(m.selected, m.scopeIndex)
		} else {
			m.selected[m.scopeIndex] = struct{}{}
		}
		m.scopeErr = ""
	case "enter":
		m.startSession()
	}
	return m, nil
}

func (m *Model) updateDrill(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Abandon the session; its state is simply discarded.
		m.sess = nil
		m.view = viewMenu
		return m, nil
	case "enter":
		if m.reveal {
			m.reveal = false
			m.feedback = ""
			m.stepAfterAnswer()
			return m, nil
		}
		m.submitAnswer()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		m.view = viewMenu
	}
	return m, nil
}

func (m *Model) openScope(mode model.Mode) {
	m.scopeMode = mode
	m.options = m.buildOptions(mode)
	m.selected = map[int]struct{}{}
	m.scopeIndex = 0
	m.scopeErr = ""
	m.view = viewScope
}

func (m *Model) buildOptions(mode model.Mode) []scopeOption {
	var options []scopeOption
	switch mode {
	case model.ModeVocabulary:
		for _, ch := range m.corpus.Chapters {
			cycles, err := cycle.Partition(m.corpus, ch.ID)
			if err != nil {
				continue
			}
			for _, cy := range cycles {
				label := fmt.Sprintf("%s  %s (%d words)", cy.ID, ch.Title, len(cy.Words))
				options = append(options, scopeOption{label: label, value: cy.ID})
			}
		}
	case model.ModeCases:
		for _, category := range m.corpus.CaseCategories() {
			options = append(options, scopeOption{label: category, value: category})
		}
	case model.ModeGradation:
		for _, pattern := range m.corpus.GradationPatterns() {
			options = append(options, scopeOption{label: pattern, value: pattern})
		}
	case model.ModeReading:
		for _, id := range m.corpus.PassageChapters() {
			passage, ok := m.corpus.Passage(id)
			if !ok {
				continue
			}
			label := fmt.Sprintf("Chapter %d: %s", id, passage.Title)
			options = append(options, scopeOption{label: label, value: strconv.Itoa(id)})
		}
	default:
		for _, level := range m.corpus.Levels() {
			options = append(options, scopeOption{label: "Level " + level, value: level, group: groupLevel})
		}
		for _, tavoite := range m.corpus.Tavoites(nil) {
			options = append(options, scopeOption{label: "Tavoite " + tavoite, value: tavoite, group: groupTavoite})
		}
	}
	return options
}

func (m *Model) buildScope() model.Scope {
	var picked []scopeOption
	for i := range m.options {
		if _, ok := m.selected[i]; ok {
			picked = append(picked, m.options[i])
		}
	}
	switch m.scopeMode {
	case model.ModeVocabulary:
		ids := make([]string, 0, len(picked))
		for _, o := range picked {
			ids = append(ids, o.value)
		}
		return model.CycleScope{CycleIDs: ids}
	case model.ModeCases, model.ModeGradation:
		categories := make([]string, 0, len(picked))
		for _, o := range picked {
			categories = append(categories, o.value)
		}
		return model.CategoryScope{Categories: categories}
	case model.ModeReading:
		if len(picked) == 0 {
			return model.ReadingScope{}
		}
		id, err := strconv.Atoi(picked[0].value)
		if err != nil {
			return model.ReadingScope{}
		}
		return model.ReadingScope{ChapterID: id}
	default:
		var levels, tavoites []string
		for _, o := range picked {
			if o.group == groupTavoite {
				tavoites = append(tavoites, o.value)
			} else {
				levels = append(levels, o.value)
			}
		}
		return model.LevelScope{LevelSet: levels, TavoiteSet: tavoites}
	}
}

func (m *Model) startSession() {
	sess, err := session.Start(m.corpus, m.scopeMode, m.buildScope())
	if err != nil {
		// Starting with an empty scope has no effect; the scope screen
		// stays as it was.
		m.scopeErr = "Nothing to practice with this selection."
		return
	}
	if m.shuffle {
		m.shuffler.Shuffle(sess)
	}
	m.sess = sess
	m.feedback = ""
	m.reveal = false
	m.input.SetValue("")
	m.input.Focus()
	if m.scopeMode == model.ModeReading {
		content := m.passageContent()
		m.passage.Width = m.contentWidth()
		m.passage.Height = strings.Count(content, "\n") + 1
		m.passage.SetContent(content)
	}
	m.view = viewDrill
}

func (m *Model) submitAnswer() {
	cur, ok := m.sess.Current()
	if !ok {
		m.stepAfterAnswer()
		return
	}
	res := m.sess.Submit(cur, m.input.Value())
	m.input.SetValue("")
	if res.Correct {
		m.feedback = correctStyle.Render("Oikein!")
		m.stepAfterAnswer()
		return
	}
	// Hold on the correction until the player acknowledges it.
	m.feedback = wrongStyle.Render("Väärin — " + res.Expected)
	m.reveal = true
}

func (m *Model) stepAfterAnswer() {
	m.sess.Advance()
	if m.sess.CheckCompletion() {
		m.finishSession()
	}
}

func (m *Model) finishSession() {
	summary, err := stats.Summarize(m.sess)
	if err != nil {
		logErrf("failed to summarize session: %v\n", err)
		m.view = viewMenu
		return
	}
	m.summary = summary
	m.saveErr = ""
	m.unlocked = ""

	ctx := context.Background()
	isNew, err := m.tracker.Record(ctx, m.sess.Mode, m.sess.Scope, summary)
	if err != nil {
		m.saveErr = "Could not save best time."
		logErrf("failed to save best time: %v\n", err)
	}
	m.newRecord = isNew

	if next, ok := m.tracker.CheckUnlock(m.sess.Mode, summary.Perfect); ok {
		if !m.tracker.IsUnlocked(next) {
			m.unlocked = next
		}
		if err := m.tracker.Unlock(ctx, next); err != nil {
			logErrf("failed to save unlock: %v\n", err)
		}
	}

	if err := m.tracker.AppendHistory(ctx, model.SessionRecord{
		Mode:       m.sess.Mode,
		Levels:     m.sess.Scope.Levels(),
		EndedAt:    m.sess.EndedAt,
		TimeMs:     summary.TimeMs,
		WrongCount: summary.WrongCount,
		Accuracy:   summary.Accuracy,
		Questions:  summary.TotalQuestions,
	}); err != nil {
		logErrf("failed to save session history: %v\n", err)
	}

	m.view = viewSummary
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.view {
	case viewMenu:
		return m.renderMenu()
	case viewScope:
		return m.renderScope()
	case viewDrill:
		return m.renderDrill()
	case viewSummary:
		return m.renderSummary()
	}
	return ""
}

func (m *Model) renderMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("taito — Finnish drills"))
	b.WriteString("\n\n")
	for i, mode := range m.modes {
		label := modeLabels[mode]
		line := "  " + label
		switch {
		case !m.tracker.IsUnlocked(mode):
			line = lockedStyle.Render("  " + label + "  (locked)")
		case i == m.menuIndex:
			line = selectedStyle.Render("> " + label)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ select · enter play · q quit"))
	return m.place(b.String())
}

func (m *Model) renderScope() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(modeLabels[m.scopeMode]))
	b.WriteString("\n\n")
	for i, option := range m.options {
		marker := "[ ]"
		if _, ok := m.selected[i]; ok {
			marker = "[x]"
		}
		line := fmt.Sprintf("  %s %s", marker, option.label)
		if i == m.scopeIndex {
			line = selectedStyle.Render("> " + line[2:])
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.scopeErr != "" {
		b.WriteString("\n")
		b.WriteString(wrongStyle.Render(m.scopeErr))
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("space toggle · enter start · esc back"))
	return m.place(b.String())
}

func (m *Model) renderDrill() string {
	cur, ok := m.sess.Current()
	if !ok && !m.reveal {
		return ""
	}
	width := m.contentWidth()
	var b strings.Builder
	if m.sess.Mode == model.ModeReading {
		b.WriteString(m.passage.View())
		b.WriteString("\n\n")
	}
	if ok {
		item := m.sess.Items[cur]
		if item.Context != "" && m.sess.Mode != model.ModeReading {
			b.WriteString(contextStyle.Render(wrapText(item.Context, width)))
			b.WriteString("\n")
		}
		b.WriteString(promptStyle.Render(wrapText(item.Prompt, width)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.feedback != "" {
		b.WriteString(m.feedback)
		b.WriteString("\n")
	}
	footer := fmt.Sprintf("%d left · %d wrong", m.sess.Remaining(), m.sess.WrongCount)
	if m.reveal {
		footer += " · enter to continue"
	}
	b.WriteString(footerStyle.Render(footer))
	return m.place(b.String())
}

func (m *Model) renderSummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Time      %s\n", stats.FormatDuration(m.summary.TimeMs)))
	b.WriteString(fmt.Sprintf("Accuracy  %d%%\n", m.summary.Accuracy))
	b.WriteString(fmt.Sprintf("Wrong     %d\n", m.summary.WrongCount))
	b.WriteString(fmt.Sprintf("Questions %d\n", m.summary.TotalQuestions))
	if m.newRecord {
		b.WriteString("\n")
		b.WriteString(correctStyle.Render("New best time!"))
		b.WriteByte('\n')
	}
	if m.unlocked != "" {
		b.WriteString("\n")
		b.WriteString(correctStyle.Render("Unlocked: " + modeLabels[m.unlocked]))
		b.WriteByte('\n')
	}
	if m.saveErr != "" {
		b.WriteString("\n")
		b.WriteString(wrongStyle.Render(m.saveErr))
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("enter menu · q quit"))
	return m.place(b.String())
}

func (m *Model) passageContent() string {
	sc, ok := m.sess.Scope.(model.ReadingScope)
	if !ok {
		return ""
	}
	passage, ok := m.corpus.Passage(sc.ChapterID)
	if !ok {
		return ""
	}
	width := m.contentWidth()
	lines := make([]string, 0, len(passage.Lines)+1)
	lines = append(lines, titleStyle.Render(passage.Title))
	for _, line := range passage.Lines {
		lines = append(lines, wrapText(line.Text, width))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	width := int(float64(m.width) * 0.70)
	if width < 20 {
		width = 20
	}
	return width
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
