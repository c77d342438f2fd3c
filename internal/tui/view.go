package tui

import (
	"fmt"
	"strconv"
	"strings"

	"bwtui/internal/model"
	"bwtui/internal/store"
	"bwtui/internal/totp"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const maskedSecret = "••••••••"

func (m appModel) View() string {
	var body string
	switch m.mode {
	case modeUnlocking:
		body = m.spinner.View() + " Unlocking…"
	case modeLoading:
		body = m.spinner.View() + " Loading vault…"
	case modeProcessing:
		body = m.spinner.View() + " Working…"
	case modeExiting:
		body = m.spinner.View() + " Locking vault…"
	case modeError:
		body = styleError().Render("Error: ") + m.fatalErr + "\n\n" + styleMuted().Render("press q to quit")
	case modePasswordPrompt:
		body = m.viewPasswordPrompt()
	case modeSearch:
		body = m.viewSearch()
	case modeDetail, modeConfirmDelete:
		body = m.viewDetail()
	case modeShortcut:
		body = m.viewShortcuts()
	case modeGenerate:
		body = m.viewGenerator()
	}

	parts := []string{m.viewHeader(), body}
	if mb := m.viewMinibuffer(); mb != "" {
		parts = append(parts, mb)
	}
	if f := m.viewFooter(); f != "" {
		parts = append(parts, styleMuted().Render(f))
	}
	return strings.Join(parts, "\n\n")
}

func (m appModel) viewHeader() string {
	title := styleAccent().Render("bwtui")
	var meta []string
	if m.status.UserEmail != "" {
		meta = append(meta, m.status.UserEmail)
	}
	if m.items.Len() > 0 || m.mode == modeSearch {
		meta = append(meta, fmt.Sprintf("%d items", m.items.Len()))
		meta = append(meta, "sort: "+m.sortMode.String())
	}
	if len(meta) == 0 {
		return title
	}
	return title + "  " + styleMuted().Render(strings.Join(meta, "  "))
}

func (m appModel) viewMinibuffer() string {
	if m.minibufferText == "" {
		return ""
	}
	st := styleMinibuffer()
	if m.minibufferErr {
		st = st.Foreground(colorError)
	}
	return st.Render(m.truncate(m.minibufferText))
}

func (m appModel) viewFooter() string {
	k := m.keys
	switch m.mode {
	case modePasswordPrompt:
		return "enter: unlock  esc: quit"
	case modeSearch:
		return helpLine(k.Open, k.CopyUsername, k.CopyPassword, k.CopyTOTP, k.Create, k.Sync, k.Sort, k.Shortcut, k.Generate, k.Quit)
	case modeDetail:
		return helpLine(k.Back, k.CopyUsername, k.CopyPassword, k.CopyTOTP, k.CopyURL, k.CopyNotes, k.Edit, k.Delete, k.Generate)
	case modeShortcut:
		return helpLine(k.Back, k.ShortcutEditConfig, k.ShortcutReload)
	case modeGenerate:
		return helpLine(k.GenSwitch, k.GenMore, k.GenLess, k.GenRegen, k.GenCopy) + "  esc: back"
	}
	return ""
}

func (m appModel) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return ansi.Truncate(s, m.width, "…")
}

func (m appModel) viewPasswordPrompt() string {
	lines := []string{m.password.View()}
	if m.promptErr != "" {
		lines = append(lines, styleError().Render(m.promptErr))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewSearch() string {
	lines := []string{m.query.View(), ""}
	if len(m.results) == 0 {
		if m.items.Len() == 0 {
			lines = append(lines, styleMuted().Render("Vault is empty. ctrl+n creates an item."))
		} else {
			lines = append(lines, styleMuted().Render("No matches"))
		}
		return strings.Join(lines, "\n")
	}

	off := m.listOffset()
	end := min(off+m.pageSize(), len(m.results))
	for i := off; i < end; i++ {
		it := m.results[i].Item
		pos := i - off + 1
		hint := "  "
		if pos <= 9 {
			hint = strconv.Itoa(pos) + " "
		}
		row := hint + itemRow(*it)
		row = m.truncate(row)
		if i == m.cursor {
			row = styleSelected().Render(row)
		}
		lines = append(lines, row)
	}
	if len(m.results) > end {
		lines = append(lines, styleMuted().Render(fmt.Sprintf("  … %d more", len(m.results)-end)))
	}
	return strings.Join(lines, "\n")
}

func itemRow(it model.Item) string {
	star := " "
	if it.Favorite {
		star = lipgloss.NewStyle().Foreground(colorFavorite).Render("★")
	}
	sub := it.Username()
	if uris := it.URIs(); len(uris) > 0 {
		if sub != "" {
			sub += "  "
		}
		sub += uris[0]
	}
	if it.Type != model.ItemTypeLogin {
		sub = "[" + it.Type.String() + "] " + sub
	}
	row := star + " " + it.Name
	if s := strings.TrimSpace(sub); s != "" {
		row += "  " + styleMuted().Render(s)
	}
	return row
}

func (m appModel) viewDetail() string {
	it := m.detail
	if it == nil {
		return styleMuted().Render("No item selected.")
	}
	var lines []string
	title := styleTitle().Render(it.Name)
	if it.Favorite {
		title += " " + lipgloss.NewStyle().Foreground(colorFavorite).Render("★")
	}
	lines = append(lines, title)

	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, styleLabel().Render(label)+m.truncate(value))
	}
	secretField := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, styleLabel().Render(label)+lipgloss.NewStyle().Foreground(colorSecretFg).Render(maskedSecret))
	}

	field("Type", it.Type.String())
	if it.Reprompt {
		field("Reprompt", "master password re-prompt enabled")
	}
	switch {
	case it.Login != nil:
		field("Username", it.Login.Username)
		secretField("Password", it.Login.Password)
		if line := m.totpLine(*it); line != "" {
			lines = append(lines, styleLabel().Render("TOTP")+line)
		}
		for i, u := range it.URIs() {
			label := "URL"
			if i > 0 {
				label = ""
			}
			field(label, u)
		}
	case it.Card != nil:
		field("Cardholder", it.Card.CardholderName)
		field("Brand", it.Card.Brand)
		secretField("Number", it.Card.Number)
		if it.Card.ExpMonth != "" || it.Card.ExpYear != "" {
			field("Expires", it.Card.ExpMonth+"/"+it.Card.ExpYear)
		}
		secretField("Code", it.Card.Code)
	case it.Identity != nil:
		field("Name", it.Identity.FullName())
		field("Email", it.Identity.Email)
		field("Phone", it.Identity.Phone)
		field("Company", it.Identity.Company)
		field("Username", it.Identity.Username)
	case it.SSHKey != nil:
		field("Fingerprint", it.SSHKey.KeyFingerprint)
		field("Public key", it.SSHKey.PublicKey)
		secretField("Private key", it.SSHKey.PrivateKey)
	}
	for _, f := range it.Fields {
		if f.Type == model.FieldHidden {
			secretField(f.Name, f.Value)
			continue
		}
		field(f.Name, f.Value)
	}
	if notes := renderNotes(it.Notes, max(20, m.width-2)); notes != "" {
		lines = append(lines, "", styleMuted().Render("Notes"), notes)
	}
	if it.RevisionDate != "" {
		lines = append(lines, "", styleMuted().Render("Updated "+it.RevisionDate))
	}

	if m.mode == modeConfirmDelete {
		lines = append(lines, "", styleWarn().Render(fmt.Sprintf("Delete %q? y to confirm, any other key cancels", it.Name)))
	}
	return strings.Join(lines, "\n")
}

// totpLine renders the current code with its countdown, highlighted near expiry.
func (m appModel) totpLine(it model.Item) string {
	seed := it.TOTPSeed()
	if seed == "" {
		return ""
	}
	code, err := totp.Generate(seed, m.now())
	if err != nil {
		if m.totpFor == it.ID && m.totpCode != "" {
			return m.totpCode
		}
		return styleMuted().Render("ctrl+t to fetch")
	}
	secs := int(code.Remaining.Seconds())
	text := fmt.Sprintf("%s %s  %ds", code.Code[:len(code.Code)/2], code.Code[len(code.Code)/2:], secs)
	if secs <= m.cfg.TOTPWarningSeconds {
		return styleWarn().Render(text)
	}
	return text
}

func (m appModel) viewShortcuts() string {
	lines := []string{styleTitle().Render("Shortcuts")}
	if len(m.cfg.Shortcuts) == 0 {
		lines = append(lines, styleMuted().Render("No shortcuts configured. ctrl+e opens the config file."))
	}
	for _, sc := range m.cfg.Shortcuts {
		desc := sc.Description
		if desc == "" {
			desc = sc.Search
		}
		lines = append(lines, m.truncate(styleAccent().Render(sc.Key)+"  "+desc+"  "+styleMuted().Render(sc.Search)))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewGenerator() string {
	g := m.genState
	unit := "characters"
	if g.kind == store.GeneratorPassphrase {
		unit = "words"
	}
	lines := []string{
		styleTitle().Render("Generate " + g.label()),
		styleMuted().Render(fmt.Sprintf("%d %s", g.size(), unit)),
		"",
		m.truncate(g.value),
	}
	return strings.Join(lines, "\n")
}
