package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Количество полей формы входа (имя/пароль).
const numCredentialFields = 2

// cycleFocus возвращает индекс поля после сдвига на delta с переходом по кругу.
func cycleFocus(current, delta, total int) int {
	return (current + delta%total + total) % total
}

// focusOnly переводит фокус на поле idx, остальные поля теряют фокус.
// Индекс вне диапазона снимает фокус со всех полей.
func focusOnly(inputs []*textinput.Model, idx int) tea.Cmd {
	for i, in := range inputs {
		if i == idx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	if idx >= 0 && idx < len(inputs) {
		return textinput.Blink
	}
	return nil
}

// handleCredentialsKeys обрабатывает Tab, Shift+Tab и Enter в полях имени и пароля.
// Enter в поле имени переводит фокус на пароль, в поле пароля вызывает onSubmit.
// Возвращает команду и флаг, указывающий, была ли клавиша обработана.
func (m *model) handleCredentialsKeys(
	keyMsg tea.KeyMsg,
	username *textinput.Model,
	password *textinput.Model,
	focusedFieldIdx *int,
	onSubmit func() tea.Cmd,
) (tea.Cmd, bool) {
	inputs := []*textinput.Model{username, password}
	switch keyMsg.String() {
	case keyTab, keyDown:
		*focusedFieldIdx = cycleFocus(*focusedFieldIdx, 1, numCredentialFields)
		return focusOnly(inputs, *focusedFieldIdx), true
	case keyShiftTab, keyUp:
		*focusedFieldIdx = cycleFocus(*focusedFieldIdx, -1, numCredentialFields)
		return focusOnly(inputs, *focusedFieldIdx), true
	case keyEnter:
		if *focusedFieldIdx == 0 {
			*focusedFieldIdx = 1
			return focusOnly(inputs, 1), true
		}
		return onSubmit(), true
	default:
		return nil, false
	}
}

// updateFocusedInput передает сообщение полю с фокусом.
func updateFocusedInput(inputs []*textinput.Model, idx int, msg tea.Msg) tea.Cmd {
	if idx < 0 || idx >= len(inputs) {
		return nil
	}
	var cmd tea.Cmd
	*inputs[idx], cmd = inputs[idx].Update(msg)
	return cmd
}
