package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hymods/client"
	"hymods/config"
	"hymods/content"
	"hymods/logger"
	"hymods/service"
	"hymods/ui"
	"hymods/view"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse community content in the terminal",
	Long: `Launch an interactive TUI that lists mods, maps, prefabs and
modpacks, with tab, filter and search navigation. Selecting a record opens
its download link in the system browser.`,
	Run: func(_ *cobra.Command, _ []string) {
		runBrowse()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// Model represents the state of the browser TUI.
type Model struct {
	svc *service.Service
	cfg config.Config
	api *client.Client // nil in local mode

	state   view.State
	catalog content.Catalog
	visible []content.Record

	selectedIndex int
	loading       bool
	errorBanner   string
	notice        string

	searching   bool
	searchInput textinput.Model

	onlineCount  int
	onlineCounts <-chan int

	spinner spinner.Model
	width   int
	height  int
}

// Message types
type catalogLoadedMsg struct {
	catalog content.Catalog
}

type loadFailedMsg string

type noticeMsg string

type clearNoticeMsg struct{}

type downloadCountedMsg struct {
	category content.Category
	id       string
	warning  string // set when the browser launch failed but the count went through
}

type downloadFailedMsg string

type onlineStreamMsg struct {
	counts <-chan int
}

type onlineCountMsg int

func newBrowseModel(cfg config.Config, svc *service.Service, api *client.Client) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	input := textinput.New()
	input.Placeholder = "search name, description or author"
	input.CharLimit = 64
	input.Width = 40

	return Model{
		svc: svc,
		cfg: cfg,
		api: api,
		state: view.State{
			Category: content.CategoryMods,
			Filter:   view.FilterAll,
		},
		loading:     true,
		spinner:     s,
		searchInput: input,
		width:       80,
		height:      24,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.loadCatalog(),
	}
	if m.api != nil {
		cmds = append(cmds, m.openOnlineStream())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case catalogLoadedMsg:
		m.catalog = msg.catalog
		m.loading = false
		m.errorBanner = ""
		m.applyView()
	case loadFailedMsg:
		// Prior catalog, if any, stays visible behind the banner.
		m.loading = false
		m.errorBanner = string(msg)
	case noticeMsg:
		m.notice = string(msg)
		return m, clearNoticeLater()
	case clearNoticeMsg:
		m.notice = ""
	case downloadCountedMsg:
		m.catalog = patchDownload(m.catalog, msg.category, msg.id)
		m.applyView()
		if msg.warning != "" {
			m.notice = msg.warning
			return m, clearNoticeLater()
		}
	case downloadFailedMsg:
		m.notice = string(msg)
		return m, clearNoticeLater()
	case onlineStreamMsg:
		m.onlineCounts = msg.counts
		return m, waitForOnlineCount(m.onlineCounts)
	case onlineCountMsg:
		m.onlineCount = int(msg)
		return m, waitForOnlineCount(m.onlineCounts)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.selectedIndex < len(m.visible)-1 {
			m.selectedIndex++
		}
	case "tab", "right", "l":
		m.switchCategory(1)
	case "shift+tab", "left", "h":
		m.switchCategory(-1)
	case "1", "2", "3", "4":
		cats := content.Categories()
		m.state.Category = cats[int(msg.String()[0]-'1')]
		m.applyView()
	case "a":
		m.state.Filter = view.FilterAll
		m.applyView()
	case "p":
		m.state.Filter = view.FilterPopular
		m.applyView()
	case "r":
		m.state.Filter = view.FilterRecent
		m.applyView()
	case "/":
		m.searching = true
		m.searchInput.SetValue(m.state.Query)
		m.searchInput.Focus()
		return m, textinput.Blink
	case "esc":
		if m.errorBanner != "" {
			m.errorBanner = ""
		} else if m.state.Query != "" {
			m.state.Query = ""
			m.applyView()
		}
	case "R":
		if !m.loading {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadCatalog())
		}
	case "enter", "d":
		return m, m.initiateDownload()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.state.Query = ""
		m.searchInput.SetValue("")
		m.applyView()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.state.Query = m.searchInput.Value()
	m.applyView()
	return m, cmd
}

// switchCategory moves to the next or previous tab. Filter and search
// survive the switch on purpose: narrowing once applies everywhere.
func (m *Model) switchCategory(delta int) {
	cats := content.Categories()
	for i, cat := range cats {
		if cat == m.state.Category {
			m.state.Category = cats[(i+delta+len(cats))%len(cats)]
			break
		}
	}
	m.applyView()
}

// applyView recomputes the rendered sequence from the current snapshot and
// view state, clamping the cursor to the new bounds.
func (m *Model) applyView() {
	m.visible = m.state.Apply(m.catalog)
	if m.selectedIndex >= len(m.visible) {
		m.selectedIndex = len(m.visible) - 1
	}
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
}

// initiateDownload runs the download-intent action for the record under the
// cursor: open the link externally and, in counting deployments, record the
// download and patch the local copy so the next render shows it.
func (m Model) initiateDownload() tea.Cmd {
	if m.selectedIndex >= len(m.visible) {
		return nil
	}
	selected := m.visible[m.selectedIndex]

	// Re-check against the catalog: the record may have vanished in a
	// reload between render and keypress. Silently do nothing then.
	var rec *content.Record
	for _, candidate := range m.catalog.Records(m.state.Category) {
		if candidate.ID == selected.ID {
			rec = &candidate
			break
		}
	}
	if rec == nil {
		return nil
	}

	if rec.DownloadURL == "" {
		return func() tea.Msg {
			return noticeMsg(fmt.Sprintf("%s: %v", rec.Name, content.ErrLinkUnavailable))
		}
	}

	category := m.state.Category
	counting := m.cfg.CountDownloads
	record := *rec
	return func() tea.Msg {
		// A failed browser launch is reported but never blocks the counter:
		// the intent to download was expressed either way.
		warning := ""
		if err := ui.OpenURL(record.DownloadURL); err != nil {
			logger.Log.Warnw("Failed to open download link", zap.String("url", record.DownloadURL), zap.Error(err))
			warning = fmt.Sprintf("could not open browser: %v", err)
		} else {
			logger.Log.Infow("Opened download link", zap.String("name", record.Name), zap.String("url", record.DownloadURL))
		}

		if !counting {
			if warning != "" {
				return downloadFailedMsg(warning)
			}
			return noticeMsg(fmt.Sprintf("Opening download for %s", record.Name))
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(m.cfg.HTTPTimeout)*time.Second)
		defer cancel()
		if err := m.svc.RecordDownload(ctx, category, record.ID); err != nil {
			logger.Log.Warnw("Failed to record download", zap.String("id", record.ID), zap.Error(err))
			return downloadFailedMsg(fmt.Sprintf("download started, but counting failed: %v", err))
		}
		return downloadCountedMsg{category: category, id: record.ID, warning: warning}
	}
}

// patchDownload returns a catalog with one record's counter bumped by one.
// The published snapshot is copy-on-write, so the original stays untouched.
func patchDownload(catalog content.Catalog, cat content.Category, id string) content.Catalog {
	patched := make(content.Catalog, len(catalog))
	for c, records := range catalog {
		patched[c] = records
	}
	records := make([]content.Record, len(catalog.Records(cat)))
	copy(records, catalog.Records(cat))
	for i := range records {
		if records[i].ID == id {
			records[i].Downloads++
			break
		}
	}
	patched[cat] = records
	return patched
}

// Load the catalog through the service
func (m Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		catalog, err := m.svc.LoadCatalog(ctx)
		if err != nil {
			if err == service.ErrLoadInFlight {
				return loadFailedMsg("a reload is already running")
			}
			logger.Log.Errorw("Failed to load catalog", zap.Error(err))
			return loadFailedMsg(err.Error())
		}
		return catalogLoadedMsg{catalog: catalog}
	}
}

func (m Model) openOnlineStream() tea.Cmd {
	return func() tea.Msg {
		counts, err := m.api.SubscribeOnlineCount(context.Background())
		if err != nil {
			logger.Log.Warnw("Failed to subscribe to online counter", zap.Error(err))
			return nil
		}
		return onlineStreamMsg{counts: counts}
	}
}

func waitForOnlineCount(counts <-chan int) tea.Cmd {
	if counts == nil {
		return nil
	}
	return func() tea.Msg {
		count, ok := <-counts
		if !ok {
			return nil
		}
		return onlineCountMsg(count)
	}
}

func clearNoticeLater() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}

// View renders the UI
func (m Model) View() string {
	if m.loading && m.catalog == nil {
		return fmt.Sprintf("\n %s Loading content...\n", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	if m.errorBanner != "" {
		b.WriteString(ui.ErrorStyle.Render("Error: "+m.errorBanner) + "  " + ui.MetaStyle.Render("(esc to dismiss)"))
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString("  No content found.\n")
	} else {
		for i, rec := range m.visible {
			b.WriteString(m.renderRecordRow(i, rec))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	if m.notice != "" {
		b.WriteString("\n" + ui.NoticeStyle.Render(m.notice))
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("HyMods")
	stats := fmt.Sprintf("%d mods · %d maps · %d prefabs · %d modpacks",
		len(m.catalog.Records(content.CategoryMods)),
		len(m.catalog.Records(content.CategoryMaps)),
		len(m.catalog.Records(content.CategoryPrefabs)),
		len(m.catalog.Records(content.CategoryModpacks)),
	)
	line := title + "  " + ui.MetaStyle.Render(stats)
	if m.api != nil {
		line += "  " + ui.MetaStyle.Render(fmt.Sprintf("● %d online", m.onlineCount))
	}
	if m.loading {
		line += "  " + m.spinner.View()
	}
	return line
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, cat := range content.Categories() {
		label := strings.ToUpper(string(cat[0])) + string(cat[1:])
		if cat == m.state.Category {
			tabs = append(tabs, ui.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, ui.TabInactiveStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderFilters() string {
	render := func(f view.Filter, label string) string {
		if m.state.Filter == f {
			return ui.FilterActiveStyle.Render("[" + label + "]")
		}
		return ui.FilterInactiveStyle.Render(label)
	}
	line := fmt.Sprintf("  %s  %s  %s",
		render(view.FilterAll, "all"),
		render(view.FilterPopular, "popular"),
		render(view.FilterRecent, "recent"),
	)

	if m.searching {
		line += "   search: " + m.searchInput.View()
	} else if m.state.Query != "" {
		line += "   " + ui.MetaStyle.Render("search: "+m.state.Query)
	}
	return line
}

func (m Model) renderRecordRow(index int, rec content.Record) string {
	name := truncate(rec.Name, 30)
	meta := fmt.Sprintf("v%-10s %-18s ⬇ %-6d %s",
		truncate(rec.Version, 10),
		truncate(rec.Author, 18),
		rec.Downloads,
		ui.RelativeDate(rec.UploadedTime(), time.Now()),
	)

	row := fmt.Sprintf("%s %-30s %s", ui.Monogram(rec.Name), name, ui.MetaStyle.Render(meta))

	if index == m.selectedIndex {
		row = ui.SelectedRowStyle.Render(fmt.Sprintf("> %-30s %s", name, meta))
		if rec.Description != "" {
			row += "\n    " + ui.MetaStyle.Render(truncate(rec.Description, m.width-8))
		}
		if rec.DownloadURL == "" {
			row += "\n    " + ui.ErrorStyle.Render("no download link")
		}
	}
	return row
}

func (m Model) renderFooter() string {
	return ui.FooterStyle.Render("↑/↓: move  tab: category  a/p/r: filter  /: search  enter: download  R: reload  q: quit")
}

// truncate shortens s to maxLen characters. Operates on runes so names
// with multi-byte characters are never cut mid-sequence.
func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

func runBrowse() {
	cfg, svc := bootstrap(".")

	var api *client.Client
	if cfg.Mode == config.ModeServer {
		var err error
		api, err = client.NewClient(cfg)
		if err != nil {
			logger.Log.Fatalw("Failed to create API client", zap.Error(err))
		}
	}

	m := newBrowseModel(cfg, svc, api)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run browser", zap.Error(err))
	}
}
