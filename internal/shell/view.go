package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	navMarkerActive = "▌"
	navMarkerCursor = "›"
	collapseHint    = "≡"
)

func (m *Model) View() string {
	if m.screen == screenBoot {
		return dimStyle.Render(m.login.spinner.View() + " Restoring session…")
	}

	body := lipgloss.JoinVertical(lipgloss.Left, m.topbarView(), m.contentView())
	view := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), body)
	if m.toast.text != "" {
		view += "\n" + toastStyle.Render(m.toast.text)
	}
	return view
}

// ShellClass mirrors the sidebar state as a single flag, for status lines
// and tests.
func (m *Model) ShellClass() string {
	if m.collapsed {
		return "sidebar-collapsed"
	}
	return ""
}

func (m *Model) sidebarView() string {
	var b strings.Builder

	if m.collapsed {
		b.WriteString(brandStyle.Render(strings.ToUpper(string([]rune(m.brand)[:1]))))
	} else {
		b.WriteString(brandStyle.Render(m.brand))
	}
	b.WriteString("\n")

	if m.screen == screenApp {
		b.WriteString(m.navView())
		if !m.collapsed {
			b.WriteString(userCardStyle.Render(m.userCard()))
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("ctrl+x log out"))
		}
	} else if !m.collapsed {
		b.WriteString(dimStyle.Render("Not signed in"))
	}

	if !m.collapsed && m.version != "" {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(m.version))
	}

	return sidebarStyle.Width(m.sidebarWidth()).Render(b.String())
}

// navView renders one line per registered module. The active module is
// marked, and the cursor is shown while the nav has focus.
func (m *Model) navView() string {
	active, _ := m.host.Active()

	var b strings.Builder
	for i, d := range m.navItems() {
		marker := " "
		if m.focus == focusNav && i == m.cursor {
			marker = navCursorStyle.Render(navMarkerCursor)
		}

		icon := d.Icon
		if icon == "" {
			icon = "•"
		}
		label := icon
		if !m.collapsed {
			label = fmt.Sprintf("%s %s", icon, d.Label())
			if i < 9 {
				label = fmt.Sprintf("%s %s", label, dimStyle.Render(fmt.Sprint(i+1)))
			}
		}

		style := navItemStyle
		if d.ID == active {
			style = navActiveStyle
			label = navMarkerActive + label
		} else {
			label = " " + label
		}
		b.WriteString(marker)
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) userCard() string {
	name := m.user.Email
	if sub := m.user.Subtitle(); sub != "" && sub != name {
		return name + "\n" + dimStyle.Render(sub)
	}
	return name
}

func (m *Model) topbarView() string {
	parts := []string{dimStyle.Render(collapseHint), titleStyle.Render(m.titleText())}
	if m.subtitle != "" {
		parts = append(parts, dimStyle.Render(m.subtitle))
	}
	if m.screen == screenApp {
		if role := m.user.RoleLabel(); role != "" {
			parts = append(parts, pillStyle.Render(role))
		}
	}
	return topbarStyle.Width(m.contentWidth()).Render(strings.Join(parts, "  "))
}

func (m *Model) titleText() string {
	switch {
	case m.screen == screenLogin:
		return "Sign in"
	case m.title != "":
		return m.title
	default:
		return "No modules available"
	}
}

func (m *Model) contentView() string {
	if m.screen == screenLogin {
		return contentStyle.Render(m.login.view(m.contentWidth()))
	}
	style := contentStyle
	if m.focus == focusContent {
		style = contentFocusStyle
	}
	return style.Width(m.contentWidth()).Render(m.host.Content())
}
