package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/auth"
)

// enterLogin открывает форму входа и проверяет, нет ли уже действительной сессии.
func (m *model) enterLogin() tea.Cmd {
	m.state = loginScreen
	m.loginErr = ""
	m.loginFailure = auth.FailureNone
	m.loginPasswordInput.SetValue("")
	m.loginFocusedField = 0
	focusOnly(m.loginInputPtrs(), 0)
	m.loginMountSeq++
	m.loginChecking = true
	return tea.Batch(loginMountCmd(m.services.Flow, m.loginMountSeq), textinput.Blink, m.spinner.Tick)
}

// goAdmin выполняет переход в админку после подтвержденного входа.
func (m *model) goAdmin() tea.Cmd {
	m.adminVisits++
	m.loginUsernameInput.SetValue("")
	m.loginPasswordInput.SetValue("")
	m.loginUsernameInput.Blur()
	m.loginPasswordInput.Blur()
	return m.enterScreen(adminScreen)
}

// handleLoginMount снимает блокировку формы и переводит в админку,
// если сессия уже действительна.
func (m *model) handleLoginMount(msg loginMountMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.loginMountSeq {
		return m, nil
	}
	m.loginChecking = false
	if !msg.authenticated || m.state != loginScreen || m.loginSubmitting {
		return m, nil
	}
	return m, m.goAdmin()
}

// handleLoginResult применяет итог отправки формы входа.
func (m *model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, auth.ErrBusy) {
		return m, nil
	}
	m.loginSubmitting = false
	if errors.Is(msg.err, auth.ErrAuthenticated) {
		if m.state != loginScreen {
			return m, nil
		}
		return m, m.goAdmin()
	}

	if msg.outcome.State == auth.StateAuthenticated {
		if m.state != loginScreen {
			return m, nil
		}
		cmd := m.goAdmin()
		_, statusCmd := m.setStatusMessage("Bienvenido, " + msg.outcome.User.Username())
		return m, tea.Batch(cmd, statusCmd)
	}

	m.loginErr = msg.outcome.Message
	m.loginFailure = msg.outcome.Failure
	m.loginPasswordInput.SetValue("")
	return m, nil
}

// submitLogin отправляет форму, если отправка еще не идет.
func (m *model) submitLogin() tea.Cmd {
	if m.loginSubmitting || m.loginChecking {
		return nil
	}
	m.loginSubmitting = true
	m.loginErr = ""
	m.loginFailure = auth.FailureNone
	creds := auth.Credentials{
		Username: m.loginUsernameInput.Value(),
		Password: m.loginPasswordInput.Value(),
	}
	return tea.Batch(submitLoginCmd(m.services.Flow, creds), m.spinner.Tick)
}

// updateLoginScreen обрабатывает сообщения для экрана входа.
func (m *model) updateLoginScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	inputs := m.loginInputPtrs()

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.loginSubmitting {
			// Ввод заблокирован до ответа сервера
			return m, nil
		}
		if keyMsg.String() == keyEsc {
			m.loginChecking = false
			focusOnly(inputs, -1)
			m.state = menuScreen
			return m, nil
		}
		if m.loginChecking {
			return m, nil
		}
		if cmd, handled := m.handleCredentialsKeys(keyMsg, inputs[0], inputs[1], &m.loginFocusedField, m.submitLogin); handled {
			return m, cmd
		}
	}

	return m, updateFocusedInput(inputs, m.loginFocusedField, msg)
}

// viewLoginScreen отображает экран входа.
func (m *model) viewLoginScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Iniciar sesión") + "\n\n")
	b.WriteString(m.loginUsernameInput.View() + "\n")
	b.WriteString(m.loginPasswordInput.View() + "\n\n")

	switch {
	case m.loginChecking:
		b.WriteString(m.spinner.View() + " Verificando sesión...\n")
	case m.loginSubmitting:
		b.WriteString(m.spinner.View() + " Ingresando...\n")
	case m.loginErr != "" && m.loginFailure == auth.FailureStorage:
		b.WriteString(bannerStyle.Render(m.loginErr) + "\n")
	case m.loginErr != "":
		b.WriteString(errorStyle.Render(m.loginErr) + "\n")
	}
	return b.String()
}

// viewVerifyingScreen отображает состояние проверки сессии.
func (m *model) viewVerifyingScreen() string {
	return m.spinner.View() + " Verificando sesión..."
}

// loginInputPtrs возвращает указатели на поля формы входа.
func (m *model) loginInputPtrs() []*textinput.Model {
	return []*textinput.Model{&m.loginUsernameInput, &m.loginPasswordInput}
}
