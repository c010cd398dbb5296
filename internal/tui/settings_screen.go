package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/billkeep/internal/app"
	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/repository"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SettingsModel shows the config-backed seller profile and the stored
// key-value settings
type SettingsModel struct {
	app *app.App

	settings []repository.Setting
	theme    string

	editing   bool
	nameInput textinput.Model

	loading bool
	err     error
}

type settingsDataMsg struct {
	settings []repository.Setting
	theme    string
	err      error
}

type settingsSavedMsg struct {
	err error
}

// NewSettingsModel creates a new settings screen model
func NewSettingsModel(a *app.App) tea.Model {
	name := textinput.New()
	name.Placeholder = "seller name"
	name.CharLimit = 60

	return &SettingsModel{
		app:       a,
		loading:   true,
		nameInput: name,
	}
}

func (m *SettingsModel) Init() tea.Cmd {
	return m.loadData()
}

// IsCapturingInput implements InputCapturer
func (m *SettingsModel) IsCapturingInput() bool {
	return m.editing
}

func (m *SettingsModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := settingsDataMsg{}

		settings, err := m.app.SettingsRepo.All(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.settings = settings

		theme, err := m.app.SettingsRepo.Get(ctx, "theme")
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			msg.err = err
			return msg
		}
		msg.theme = theme

		return msg
	}
}

func (m *SettingsModel) saveSellerName(name string) tea.Cmd {
	return func() tea.Msg {
		m.app.Config.Seller.Name = name
		if err := m.app.SaveConfig(); err != nil {
			return settingsSavedMsg{err: err}
		}
		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsDataMsg:
		m.loading = false
		m.err = msg.err
		m.settings = msg.settings
		m.theme = msg.theme
		return m, nil

	case settingsSavedMsg:
		m.err = msg.err
		return m, m.loadData()

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case "enter":
				m.editing = false
				m.nameInput.Blur()
				return m, m.saveSellerName(m.nameInput.Value())
			case "esc":
				m.editing = false
				m.nameInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.nameInput, cmd = m.nameInput.Update(msg)
			return m, cmd
		}

		if key.Matches(msg, DefaultKeyMap.Select) {
			m.editing = true
			m.nameInput.SetValue(m.app.Config.Seller.Name)
			m.nameInput.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

func (m *SettingsModel) View() string {
	if m.loading {
		return "Loading settings..."
	}

	var s string

	seller := m.app.Config.Seller
	s += titleStyle.Render("  Seller") + "\n"
	if m.editing {
		s += "  Name: " + m.nameInput.View() + "\n"
	} else {
		name := seller.Name
		if name == "" {
			name = subtitleStyle.Render("(not set)")
		}
		s += fmt.Sprintf("  Name:    %s\n", name)
	}
	if seller.Email != "" {
		s += fmt.Sprintf("  Email:   %s\n", seller.Email)
	}
	if seller.Address != "" {
		s += fmt.Sprintf("  Address: %s\n", seller.Address)
	}
	if m.theme != "" {
		s += fmt.Sprintf("  Theme:   %s\n", m.theme)
	}

	s += "\n" + titleStyle.Render("  Invoice defaults") + "\n"
	cfg := m.app.Config.Invoice
	s += fmt.Sprintf("  Prefix: %s   Due days: %d   Currency: %s\n",
		cfg.NumberPrefix, cfg.DefaultDueDays, cfg.Currency)

	s += "\n" + titleStyle.Render("  Stored settings") + "\n"
	if len(m.settings) == 0 {
		s += subtitleStyle.Render("  None") + "\n"
	} else {
		for _, setting := range m.settings {
			s += fmt.Sprintf("  %-20s %s\n", setting.Key, truncateStr(setting.Value, 40))
		}
	}

	if m.err != nil {
		s += "\n" + fmt.Sprintf("  Error: %v", m.err)
	}

	s += "\n" + helpStyle.Render("  [enter] edit seller name")
	return s
}
