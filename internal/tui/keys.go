package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Back     key.Binding
	Open     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Create   key.Binding
	Sync     key.Binding
	Sort     key.Binding
	Shortcut key.Binding
	Generate key.Binding
	Edit     key.Binding
	Delete   key.Binding

	CopyUsername key.Binding
	CopyPassword key.Binding
	CopyTOTP     key.Binding
	CopyURL      key.Binding
	CopyNotes    key.Binding

	// ShortcutBare only applies while the query is empty so it can still be typed.
	ShortcutBare       key.Binding
	ShortcutEditConfig key.Binding
	ShortcutReload     key.Binding

	GenSwitch key.Binding
	GenMore   key.Binding
	GenLess   key.Binding
	GenRegen  key.Binding
	GenCopy   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),

		Create:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Sync:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "sync")),
		Sort:     key.NewBinding(key.WithKeys("ctrl+r", "tab"), key.WithHelp("tab", "sort")),
		Shortcut: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "shortcuts")),
		Generate: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "generate")),
		Edit:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),

		CopyUsername: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "user")),
		CopyPassword: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "pass")),
		CopyTOTP:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "totp")),
		CopyURL:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "url")),
		CopyNotes:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "notes")),

		ShortcutBare:       key.NewBinding(key.WithKeys(`\`), key.WithHelp(`\`, "shortcuts")),
		ShortcutEditConfig: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit config")),
		ShortcutReload:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload config")),

		GenSwitch: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "password/passphrase")),
		GenMore:   key.NewBinding(key.WithKeys("+", "=", "right"), key.WithHelp("+", "longer")),
		GenLess:   key.NewBinding(key.WithKeys("-", "left"), key.WithHelp("-", "shorter")),
		GenRegen:  key.NewBinding(key.WithKeys("r", " "), key.WithHelp("r", "regenerate")),
		GenCopy:   key.NewBinding(key.WithKeys("enter", "c"), key.WithHelp("enter", "copy")),
	}
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += h.Key + ": " + h.Desc
	}
	return out
}
