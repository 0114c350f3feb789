package shell

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

const (
	msgCredentialsRequired = "Email and password are required"
	labelSignIn            = "Sign in"
	labelSigningIn         = "Signing in…"
)

type loginForm struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	busy    bool
	err     string
	spinner spinner.Model
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@pharmacy.example"
	email.Prompt = "Email    "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	f := loginForm{inputs: [fieldCount]textinput.Model{email, password}, spinner: sp}
	f.setFocus(fieldEmail)
	return f
}

// reset clears the form for a fresh sign in. note is shown as the error line.
func (f *loginForm) reset(note string) {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.busy = false
	f.err = note
	f.setFocus(fieldEmail)
}

func (f *loginForm) setFocus(i int) {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *loginForm) email() string    { return strings.TrimSpace(f.inputs[fieldEmail].Value()) }
func (f *loginForm) password() string { return f.inputs[fieldPassword].Value() }

// validate returns the inline message for an incomplete form.
func (f *loginForm) validate() string {
	if f.email() == "" || f.password() == "" {
		return msgCredentialsRequired
	}
	return ""
}

// update feeds a message to the focused input.
func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *loginForm) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(labelSignIn))
	b.WriteString("\n\n")
	for i := range f.inputs {
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if f.busy {
		b.WriteString(buttonBusyStyle.Render(f.spinner.View() + " " + labelSigningIn))
	} else {
		b.WriteString(buttonStyle.Render(labelSignIn))
	}

	if f.err != "" {
		b.WriteString("\n\n")
		b.WriteString(formErrorStyle.Render(f.err))
	}

	box := formBoxStyle
	if width > 8 {
		box = box.Width(min(width-4, 56))
	}
	return box.Render(b.String())
}
