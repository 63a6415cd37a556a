// Package app wires the views, the API client, the snapshot store, and
// the background reconciler into the root Bubble Tea model.
package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/keys"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/session"
	"github.com/minhng/taskdeck/internal/store"
	appsync "github.com/minhng/taskdeck/internal/sync"
	"github.com/minhng/taskdeck/internal/ui"
	"github.com/minhng/taskdeck/internal/ui/dashboard"
	helpview "github.com/minhng/taskdeck/internal/ui/help"
	"github.com/minhng/taskdeck/internal/ui/projectform"
	"github.com/minhng/taskdeck/internal/ui/projectlist"
	"github.com/minhng/taskdeck/internal/ui/settings"
	"github.com/minhng/taskdeck/internal/ui/signin"
	"github.com/minhng/taskdeck/internal/ui/taskform"
	"github.com/minhng/taskdeck/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewSignIn ViewState = iota
	ViewDashboard
	ViewTasks
	ViewTaskCreate
	ViewTaskEdit
	ViewProjects
	ViewProjectCreate
	ViewProjectEdit
	ViewSettings
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the API client and snapshot store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout

	cfg        *model.AppConfig
	configPath string
	client     *api.Client
	store      store.Store
	sess       session.Store
	keys       *keys.KeyMap
	log        zerolog.Logger
	poller     *appsync.Poller

	signIn      signin.Model
	dashboard   dashboard.Model
	taskList    tasklist.Model
	taskForm    taskform.Model
	projectList projectlist.Model
	projectForm projectform.Model
	settings    settings.Model
	helpView    helpview.Model

	user         *model.User
	editTask     model.Task
	pendingCount int
	notice       string
	ready        bool
	hasSession   bool
}

// New creates a new root application model.
func New(
	cfg *model.AppConfig,
	configPath string,
	client *api.Client,
	s store.Store,
	sess session.Store,
	poller *appsync.Poller,
	log zerolog.Logger,
) Model {
	k := keys.DefaultKeyMap()

	_, tokenErr := sess.Token()
	hasSession := tokenErr == nil

	view := ViewSignIn
	if hasSession {
		view = ViewDashboard
	}

	return Model{
		currentView: view,
		cfg:         cfg,
		configPath:  configPath,
		client:      client,
		store:       s,
		sess:        sess,
		keys:        k,
		log:         log,
		poller:      poller,
		signIn:      signin.New(cfg.Server.BaseURL, 80, 24),
		dashboard:   dashboard.New(s, 80, 24),
		taskList:    tasklist.New(client, s, k, cfg.Display.PageSize, 80, 24),
		taskForm:    taskform.New(80, 24),
		projectList: projectlist.New(client, s, k, 80, 24),
		projectForm: projectform.New(80, 24),
		settings:    settings.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
		hasSession:  hasSession,
	}
}

// Init validates a stored session when one exists, otherwise it opens
// the sign-in form.
func (m Model) Init() tea.Cmd {
	if m.hasSession {
		return tea.Batch(m.checkSessionCmd(), m.dashboard.Init())
	}
	return m.signIn.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.signIn.SetSize(contentWidth, contentHeight)
		m.dashboard.SetSize(contentWidth, contentHeight)
		m.taskList.SetSize(contentWidth, contentHeight)
		m.taskForm.SetSize(contentWidth, contentHeight)
		m.projectList.SetSize(contentWidth, contentHeight)
		m.projectForm.SetSize(contentWidth, contentHeight)
		m.settings.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case signin.SubmittedMsg:
		return m, m.signInCmd(msg.Email, msg.Password, msg.Name, msg.Register)

	case authResultMsg:
		if msg.err != nil {
			return m, m.signIn.SetError(msg.err.Error())
		}
		m.user = msg.user
		m.notice = ""
		m.currentView = ViewDashboard
		return m, tea.Batch(m.poller.Start(), m.dashboard.Load())

	case profileResultMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				if err := m.sess.Clear(); err != nil {
					m.log.Warn().Err(err).Msg("clearing expired session")
				}
				m.currentView = ViewSignIn
				return m, m.signIn.SetError("Session expired, sign in again.")
			}
			// Backend unreachable; keep the snapshot views usable.
			m.notice = "offline"
			return m, tea.Batch(m.poller.Start(), m.dashboard.Load())
		}
		m.user = msg.user
		return m, tea.Batch(m.poller.Start(), m.dashboard.Load())

	case logoutDoneMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("logout request failed")
		}
		m.poller.Stop()
		m.user = nil
		m.notice = ""
		m.currentView = ViewSignIn
		return m, m.signIn.Start()

	case appsync.SyncResultMsg:
		if msg.AuthExpired {
			if err := m.sess.Clear(); err != nil {
				m.log.Warn().Err(err).Msg("clearing expired session")
			}
			m.currentView = ViewSignIn
			return m, m.signIn.SetError("Session expired, sign in again.")
		}
		if msg.Error != nil {
			m.notice = "sync failed"
		} else {
			m.notice = ""
		}
		cmds := []tea.Cmd{m.poller.WaitForNextResult(), m.fetchPendingCountCmd()}
		switch m.currentView {
		case ViewDashboard:
			cmds = append(cmds, m.dashboard.Load())
		case ViewTasks:
			cmds = append(cmds, m.taskList.LoadTasks())
		case ViewProjects:
			cmds = append(cmds, m.projectList.LoadProjects())
		}
		return m, tea.Batch(cmds...)

	case pendingCountMsg:
		m.pendingCount = msg.count
		return m, nil

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskEdit
		m.editTask = msg.Task
		return m, m.loadProjectOptionsCmd()

	case projectOptionsMsg:
		m.taskForm.SetProjects(msg.todos)
		if m.currentView == ViewTaskCreate {
			return m, m.taskForm.StartCreate(nil)
		}
		return m, m.taskForm.StartEdit(m.editTask)

	case taskform.CreatedMsg:
		m.currentView = ViewTasks
		return m, m.createTaskCmd(msg.Req)

	case taskform.UpdatedMsg:
		m.currentView = ViewTasks
		return m, m.updateTaskCmd(msg.ID, msg.Req)

	case taskform.CancelMsg:
		m.currentView = ViewTasks
		return m, nil

	case taskMutatedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("task %s failed: %s", msg.action, msg.err)
		} else {
			m.notice = ""
			m.poller.Refresh()
		}
		return m, tea.Batch(m.taskList.LoadTasks(), m.fetchPendingCountCmd())

	case projectlist.OpenProjectMsg:
		m.currentView = ViewTasks
		id := msg.Todo.ID
		return m, m.taskList.SetProjectFilter(&id)

	case projectform.CreatedMsg:
		m.currentView = ViewProjects
		return m, m.createProjectCmd(msg.Req)

	case projectform.UpdatedMsg:
		m.currentView = ViewProjects
		return m, m.updateProjectCmd(msg.ID, msg.Req)

	case projectform.CancelMsg:
		m.currentView = ViewProjects
		return m, nil

	case projectMutatedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("project %s failed: %s", msg.action, msg.err)
		} else {
			m.notice = ""
			m.poller.Refresh()
		}
		return m, tea.Batch(m.projectList.LoadProjects(), m.fetchPendingCountCmd())

	case settings.SavedMsg:
		cfg := msg.Config
		m.cfg = &cfg
		m.currentView = ViewDashboard
		return m, m.saveConfigCmd(cfg)

	case settings.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case configSavedMsg:
		if msg.err != nil {
			m.notice = "saving settings failed: " + msg.err.Error()
		} else {
			m.notice = "settings saved"
		}
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work across the browse views.
// Form views and the task search box get all keys verbatim.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.poller.Stop()
		return true, m, tea.Quit
	}

	browsing := m.currentView == ViewDashboard ||
		m.currentView == ViewTasks ||
		m.currentView == ViewProjects ||
		m.currentView == ViewHelp
	if !browsing || (m.currentView == ViewTasks && m.taskList.Searching()) {
		return false, m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.poller.Stop()
		return true, m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return true, m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.poller.Refresh()
		return true, m, nil

	case key.Matches(msg, m.keys.Dashboard):
		m.currentView = ViewDashboard
		return true, m, m.dashboard.Load()

	case key.Matches(msg, m.keys.Tasks):
		m.currentView = ViewTasks
		return true, m, m.taskList.LoadTasks()

	case key.Matches(msg, m.keys.Projects):
		m.currentView = ViewProjects
		return true, m, m.projectList.LoadProjects()

	case key.Matches(msg, m.keys.Settings):
		m.previousView = m.currentView
		m.currentView = ViewSettings
		return true, m, m.settings.Start(*m.cfg)

	case key.Matches(msg, m.keys.Logout):
		return true, m, m.logoutCmd()

	case key.Matches(msg, m.keys.New):
		switch m.currentView {
		case ViewTasks, ViewDashboard:
			m.previousView = m.currentView
			m.currentView = ViewTaskCreate
			return true, m, m.loadProjectOptionsCmd()
		case ViewProjects:
			m.previousView = m.currentView
			m.currentView = ViewProjectCreate
			return true, m, m.projectForm.StartCreate()
		}

	case key.Matches(msg, m.keys.Edit):
		switch m.currentView {
		case ViewTasks:
			if task, ok := m.taskList.SelectedTask(); ok {
				m.previousView = m.currentView
				m.currentView = ViewTaskEdit
				m.editTask = task
				return true, m, m.loadProjectOptionsCmd()
			}
		case ViewProjects:
			if todo, ok := m.projectList.SelectedProject(); ok {
				m.previousView = m.currentView
				m.currentView = ViewProjectEdit
				return true, m, m.projectForm.StartEdit(todo)
			}
		}

	case key.Matches(msg, m.keys.Delete):
		switch m.currentView {
		case ViewTasks:
			if task, ok := m.taskList.SelectedTask(); ok {
				return true, m, m.deleteTaskCmd(task.ID)
			}
		case ViewProjects:
			if todo, ok := m.projectList.SelectedProject(); ok {
				return true, m, m.deleteProjectCmd(todo.ID)
			}
		}

	case key.Matches(msg, m.keys.ToggleDone):
		if m.currentView == ViewTasks {
			if task, ok := m.taskList.SelectedTask(); ok {
				return true, m, m.toggleTaskCompleteCmd(task)
			}
		}
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewSignIn:
		m.signIn, cmd = m.signIn.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewTaskCreate, ViewTaskEdit:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewProjects:
		m.projectList, cmd = m.projectList.Update(msg)
	case ViewProjectCreate, ViewProjectEdit:
		m.projectForm, cmd = m.projectForm.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "TaskDeck"
	if m.user != nil {
		headerTitle = fmt.Sprintf("TaskDeck — %s", m.user.Email)
	}
	header := m.layout.RenderHeader(headerTitle, m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.noticeText())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewSignIn:
		return m.signIn.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewTasks:
		return m.taskList.View()
	case ViewTaskCreate, ViewTaskEdit:
		return m.taskForm.View()
	case ViewProjects:
		return m.projectList.View()
	case ViewProjectCreate, ViewProjectEdit:
		return m.projectForm.View()
	case ViewSettings:
		return m.settings.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the reconciler state.
func (m Model) syncStatus() string {
	if m.currentView == ViewSignIn {
		return "signed out"
	}

	status := m.poller.Status()
	switch status.State {
	case appsync.SyncRunning:
		return "syncing"
	case appsync.SyncError:
		return "⚠ offline"
	default:
		if status.LastSync.IsZero() {
			return "idle"
		}
		return "synced " + status.LastSync.Local().Format("15:04")
	}
}

// noticeText returns the right-hand status bar text.
func (m Model) noticeText() string {
	if m.pendingCount > 0 {
		suffix := fmt.Sprintf("%d pending", m.pendingCount)
		if m.notice != "" {
			return m.notice + " | " + suffix
		}
		return suffix
	}
	return m.notice
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewSignIn:
		return "enter submit | esc quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewTaskCreate, ViewTaskEdit, ViewProjectCreate, ViewProjectEdit, ViewSettings:
		return "enter submit | esc cancel"
	case ViewProjects:
		return "enter open | n new | e edit | d delete | 1 dashboard | 2 tasks | ? help"
	case ViewTasks:
		filterSummary := m.taskList.FilterSummary()
		if filterSummary != "" {
			return filterSummary + " | s/o cycle filters | / search"
		}
		return "n new | e edit | x done | d delete | / search | [ ] pages | ? help"
	default:
		return "1 dashboard | 2 tasks | 3 projects | 4 settings | r refresh | q quit | ? help"
	}
}
