package keys

import tea "github.com/charmbracelet/bubbletea"

// FromTea converts a bubbletea key message into a Press so the dashboard
// can feed the same mapper as the raw console.
func FromTea(msg tea.KeyMsg) Press {
	switch msg.Type {
	case tea.KeyUp:
		return Press{Key: KeyUp}
	case tea.KeyDown:
		return Press{Key: KeyDown}
	case tea.KeyRight:
		return Press{Key: KeyRight}
	case tea.KeyLeft:
		return Press{Key: KeyLeft}
	case tea.KeyCtrlC:
		return Press{Key: KeyInterrupt}
	case tea.KeyEsc:
		return Press{Key: KeyEscape, Seq: []byte{esc}}
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Alt {
			return Rune(msg.Runes[0])
		}
	}
	return Press{}
}
