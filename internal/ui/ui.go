package ui

import (
	"context"
	"fmt"

	"github.com/bookywarm/wyrm/internal/controller"
	"github.com/bookywarm/wyrm/internal/shared"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	AuthView ViewState = iota
	DashboardView
	ConfirmDeleteView
)

// focusRegion identifies which dashboard pane receives key input.
type focusRegion int

const (
	focusQuery focusRegion = iota
	focusResults
	focusLibrary
)

type sessionMsg struct {
	snap controller.SessionSnapshot
}

type searchMsg struct {
	snap controller.SearchSnapshot
}

type libraryMsg struct {
	snap controller.LibrarySnapshot
}

type savedMsg struct {
	index  int
	gen    uint64
	result controller.MutationResult
}

type mutatedMsg struct {
	result controller.MutationResult
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	session *controller.Session
	search  *controller.Search
	library *controller.Library
	width   int
	height  int

	registering bool
	username    textinput.Model
	email       textinput.Model
	password    textinput.Model
	authField   int

	sessionSnap controller.SessionSnapshot
	queryInput  textinput.Model
	focus       focusRegion
	searchSnap  controller.SearchSnapshot
	resultList  list.Model
	searchGen   uint64
	librarySnap controller.LibrarySnapshot
	entryList   list.Model
	libraryGen  uint64

	pendingDelete *entryItem
	status        string
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model with the provided controllers.
func NewModel(ctx context.Context, session *controller.Session, search *controller.Search, library *controller.Library) *Model {
	username := textinput.New()
	username.Placeholder = "usuario"

	email := textinput.New()
	email.Placeholder = "email"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "contraseña"
	password.EchoMode = textinput.EchoPassword

	query := textinput.New()
	query.Placeholder = "buscar libros..."

	return &Model{
		ctx:        ctx,
		view:       AuthView,
		session:    session,
		search:     search,
		library:    library,
		username:   username,
		email:      email,
		password:   password,
		queryInput: query,
		resultList: newPaneList("Resultados"),
		entryList:  newPaneList("Mis libros"),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func newPaneList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}

// Init restores the persisted session before showing any view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.restoreSession())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanes()
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case AuthView:
			return m.handleAuthKeys(msg)
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case sessionMsg:
		return m.applySession(msg.snap)

	case searchMsg:
		return m.applySearch(msg.snap)

	case libraryMsg:
		return m.applyLibrary(msg.snap)

	case savedMsg:
		return m.applySaved(msg)

	case mutatedMsg:
		return m.applyMutation(msg.result)
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case AuthView:
		return m.renderAuth()
	case DashboardView:
		return m.renderDashboard()
	case ConfirmDeleteView:
		return m.renderConfirmDelete()
	default:
		return ""
	}
}

func (m *Model) resizePanes() {
	paneHeight := (m.height - 10) / 2
	if paneHeight < 4 {
		paneHeight = 4
	}
	m.resultList.SetSize(m.width-4, paneHeight)
	m.entryList.SetSize(m.width-4, paneHeight)
}

// ---- message application -------------------------------------------------

func (m *Model) applySession(snap controller.SessionSnapshot) (tea.Model, tea.Cmd) {
	m.sessionSnap = snap

	if snap.State == controller.Authenticated {
		m.view = DashboardView
		m.focus = focusQuery
		m.queryInput.Focus()
		m.status = snap.Notice
		return m, m.refreshLibrary()
	}

	// Entering Unauthenticated resets both dependent regions.
	m.view = AuthView
	m.searchSnap = m.search.Reset()
	m.librarySnap = m.library.Reset()
	m.searchGen = m.searchSnap.Gen
	m.libraryGen = m.librarySnap.Gen
	m.resultList.SetItems(nil)
	m.entryList.SetItems(nil)
	m.queryInput.SetValue("")
	m.username.SetValue("")
	m.email.SetValue("")
	m.password.SetValue("")
	m.status = snap.Notice
	m.focusAuthField(m.authField)
	return m, nil
}

func (m *Model) applySearch(snap controller.SearchSnapshot) (tea.Model, tea.Cmd) {
	// A stale response never replaces a newer render.
	if snap.Gen < m.searchGen {
		return m, nil
	}
	m.searchGen = snap.Gen
	m.searchSnap = snap

	items := make([]list.Item, len(snap.Cards))
	for i, card := range snap.Cards {
		items[i] = searchItem{card: card}
	}
	m.resultList.SetItems(items)

	if snap.Loading {
		return m, m.completeSearch(snap)
	}
	return m, nil
}

func (m *Model) applyLibrary(snap controller.LibrarySnapshot) (tea.Model, tea.Cmd) {
	if snap.SessionExpired {
		return m.applySession(m.session.Invalidate())
	}
	if snap.Gen < m.libraryGen {
		return m, nil
	}
	m.libraryGen = snap.Gen
	m.librarySnap = snap

	items := make([]list.Item, len(snap.Entries))
	for i, entry := range snap.Entries {
		items[i] = entryItem{entry: entry}
	}
	m.entryList.SetItems(items)
	return m, nil
}

func (m *Model) applySaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.result.SessionExpired {
		return m.applySession(m.session.Invalidate())
	}

	// A save dispatched against an older search never touches the newer render.
	if msg.gen != m.searchGen {
		return m, nil
	}

	if msg.index >= 0 && msg.index < len(m.searchSnap.Cards) {
		card := &m.searchSnap.Cards[msg.index]
		if msg.result.OK() {
			card.Saved = true
			card.Error = ""
		} else {
			card.Error = msg.result.Message
		}
		m.resultList.SetItem(msg.index, searchItem{card: *card})
	}

	if msg.result.Refresh {
		m.status = "libro guardado"
		return m, m.refreshLibrary()
	}
	return m, nil
}

func (m *Model) applyMutation(result controller.MutationResult) (tea.Model, tea.Cmd) {
	if result.SessionExpired {
		return m.applySession(m.session.Invalidate())
	}
	if result.Refresh {
		m.status = ""
		return m, m.refreshLibrary()
	}
	m.status = result.Message
	return m, nil
}

// ---- key handling --------------------------------------------------------

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		m.registering = !m.registering
		m.authField = 0
		m.focusAuthField(0)
		return m, nil
	case "tab", "shift+tab", "down", "up":
		fields := 2
		if m.registering {
			fields = 3
		}
		if msg.String() == "shift+tab" || msg.String() == "up" {
			m.authField = (m.authField + fields - 1) % fields
		} else {
			m.authField = (m.authField + 1) % fields
		}
		m.focusAuthField(m.authField)
		return m, nil
	case "enter":
		if m.registering {
			return m, m.submitRegister()
		}
		return m, m.submitLogin()
	}

	var cmd tea.Cmd
	switch m.currentAuthInput() {
	case &m.username:
		m.username, cmd = m.username.Update(msg)
	case &m.email:
		m.email, cmd = m.email.Update(msg)
	case &m.password:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.tab) {
		m.cycleFocus()
		return m, nil
	}

	switch m.focus {
	case focusQuery:
		return m.handleQueryKeys(msg)
	case focusResults:
		return m.handleResultKeys(msg)
	case focusLibrary:
		return m.handleLibraryKeys(msg)
	}
	return m, nil
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		snap := m.search.Start(m.queryInput.Value())
		return m.applySearch(snap)
	case "esc":
		m.cycleFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		return m, tea.Quit
	case key.Matches(msg, m.keys.save):
		index := m.resultList.Index()
		if index >= 0 && index < len(m.searchSnap.Cards) && !m.searchSnap.Cards[index].Saved {
			return m, m.saveCard(index)
		}
		return m, nil
	case key.Matches(msg, m.keys.rate):
		index := m.resultList.Index()
		if index >= 0 && index < len(m.searchSnap.Cards) {
			m.searchSnap.Cards[index].Rating = int(msg.String()[0] - '0')
			m.resultList.SetItem(index, searchItem{card: m.searchSnap.Cards[index]})
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if item, ok := m.resultList.SelectedItem().(searchItem); ok {
			m.openCover(item.card.Result.CoverImage)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		return m, tea.Quit
	case msg.String() == "ctrl+l":
		return m.applySession(m.session.Logout())
	case key.Matches(msg, m.keys.refresh):
		return m, m.refreshLibrary()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			m.pendingDelete = &item
			m.view = ConfirmDeleteView
		}
		return m, nil
	case key.Matches(msg, m.keys.rate):
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			rating := int(msg.String()[0] - '0')
			return m, m.rateEntry(item.entry.RatingID, rating)
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			m.openCover(item.entry.Book.CoverImage)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		entry := m.pendingDelete
		m.pendingDelete = nil
		m.view = DashboardView
		if entry != nil {
			return m, m.deleteEntry(entry.entry.RatingID)
		}
		return m, nil
	case "n", "esc", "q":
		m.pendingDelete = nil
		m.view = DashboardView
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) openCover(url string) {
	if url == "" {
		m.status = "este libro no tiene portada"
		return
	}
	if err := shared.OpenBrowser(url); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) cycleFocus() {
	m.queryInput.Blur()
	switch m.focus {
	case focusQuery:
		m.focus = focusResults
	case focusResults:
		m.focus = focusLibrary
	default:
		m.focus = focusQuery
		m.queryInput.Focus()
	}
}

func (m *Model) currentAuthInput() *textinput.Model {
	if m.registering {
		switch m.authField {
		case 0:
			return &m.username
		case 1:
			return &m.email
		default:
			return &m.password
		}
	}
	if m.authField == 0 {
		return &m.email
	}
	return &m.password
}

func (m *Model) focusAuthField(field int) {
	m.username.Blur()
	m.email.Blur()
	m.password.Blur()
	m.authField = field
	m.currentAuthInput().Focus()
}

// ---- commands ------------------------------------------------------------

func (m *Model) restoreSession() tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{snap: m.session.Restore(m.ctx)}
	}
}

func (m *Model) submitLogin() tea.Cmd {
	email, password := m.email.Value(), m.password.Value()
	return func() tea.Msg {
		return sessionMsg{snap: m.session.Login(m.ctx, email, password)}
	}
}

func (m *Model) submitRegister() tea.Cmd {
	username, email, password := m.username.Value(), m.email.Value(), m.password.Value()
	return func() tea.Msg {
		return sessionMsg{snap: m.session.Register(m.ctx, username, email, password)}
	}
}

func (m *Model) completeSearch(snap controller.SearchSnapshot) tea.Cmd {
	return func() tea.Msg {
		return searchMsg{snap: m.search.Complete(m.ctx, snap)}
	}
}

func (m *Model) refreshLibrary() tea.Cmd {
	return func() tea.Msg {
		return libraryMsg{snap: m.library.Refresh(m.ctx)}
	}
}

func (m *Model) saveCard(index int) tea.Cmd {
	card := m.searchSnap.Cards[index]
	gen := m.searchGen
	return func() tea.Msg {
		return savedMsg{index: index, gen: gen, result: m.search.Save(m.ctx, card.Result, card.Rating)}
	}
}

func (m *Model) rateEntry(ratingID, rating int) tea.Cmd {
	return func() tea.Msg {
		return mutatedMsg{result: m.library.UpdateRating(m.ctx, ratingID, rating)}
	}
}

func (m *Model) deleteEntry(ratingID int) tea.Cmd {
	return func() tea.Msg {
		return mutatedMsg{result: m.library.DeleteRating(m.ctx, ratingID)}
	}
}

// ---- rendering -----------------------------------------------------------

func (m *Model) renderAuth() string {
	title := "Iniciar sesión"
	if m.registering {
		title = "Crear cuenta"
	}

	out := styles.title.Render(title) + "\n"
	if m.registering {
		out += fmt.Sprintf("%s\n", m.username.View())
	}
	out += fmt.Sprintf("%s\n%s\n", m.email.View(), m.password.View())

	if m.sessionSnap.Error != "" {
		out += "\n" + styles.err.Render(m.sessionSnap.Error) + "\n"
	}
	if m.status != "" {
		out += "\n" + styles.ok.Render(m.status) + "\n"
	}

	toggle := "ctrl+r: crear cuenta"
	if m.registering {
		toggle = "ctrl+r: iniciar sesión"
	}
	out += "\n" + styles.help.Render(fmt.Sprintf("enter: enviar • tab: campo • %s • ctrl+c: salir", toggle))
	return out
}

func (m *Model) renderDashboard() string {
	header := styles.title.Render(m.sessionSnap.Greeting())

	query := m.queryInput.View()
	if m.focus == focusQuery {
		query = "> " + query
	}

	searchPane := m.resultList.View()
	if m.searchSnap.Loading {
		searchPane = styles.warn.Render("Buscando...")
	} else if m.searchSnap.Message != "" {
		searchPane = styles.warn.Render(m.searchSnap.Message)
	} else if m.searchSnap.Error != "" {
		searchPane = styles.err.Render(m.searchSnap.Error)
	}

	libraryPane := m.entryList.View()
	if m.librarySnap.Empty {
		libraryPane = styles.help.Render("Aún no has guardado ningún libro.")
	} else if m.librarySnap.Error != "" {
		libraryPane = styles.err.Render(m.librarySnap.Error)
	}

	var status string
	if m.status != "" {
		status = "\n" + styles.ok.Render(m.status)
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.tab, m.keys.save, m.keys.rate, m.keys.remove, m.keys.refresh, m.keys.quit,
	})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s%s\n\n%s", header, query, searchPane, libraryPane, status, helpView)
}

func (m *Model) renderConfirmDelete() string {
	if m.pendingDelete == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("¿Eliminar '%s' de tu biblioteca?", m.pendingDelete.entry.Book.Title))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}
