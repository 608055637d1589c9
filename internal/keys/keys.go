package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Side panel tabs
	NextTab key.Binding
	PrevTab key.Binding

	// Task actions
	New             key.Binding
	Edit            key.Binding
	ToggleStatus    key.Binding
	CyclePriority   key.Binding
	Delete          key.Binding
	AddComment      key.Binding
	Reply           key.Binding
	AddSubtask      key.Binding
	ToggleSubtask   key.Binding
	AddTag          key.Binding
	AddMember       key.Binding
	AddCollaborator key.Binding
	CycleRole       key.Binding
	Remove          key.Binding

	// Activity feed
	LoadMore       key.Binding
	FilterActivity key.Binding

	// Sort
	CycleSort key.Binding

	// Screens
	Lists   key.Binding
	Tags    key.Binding
	Command key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open task"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l"),
			key.WithHelp("tab/l", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h"),
			key.WithHelp("shift+tab/h", "previous tab"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit task"),
		),
		ToggleStatus: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		CyclePriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle priority"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete task"),
		),
		AddComment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Reply: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reply"),
		),
		AddSubtask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add subtask"),
		),
		ToggleSubtask: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle subtask"),
		),
		AddTag: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add tag"),
		),
		AddMember: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "assign"),
		),
		AddCollaborator: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "add collaborator"),
		),
		CycleRole: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle role"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove selected"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "load more"),
		),
		FilterActivity: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter activity"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Lists: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "choose list"),
		),
		Tags: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "workspace tags"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Help, k.Refresh, k.CycleSort, k.New},
		{k.NextTab, k.PrevTab, k.Edit, k.ToggleStatus, k.CyclePriority, k.Delete},
		{k.AddComment, k.Reply, k.AddSubtask, k.ToggleSubtask, k.Remove},
		{k.AddTag, k.AddMember, k.AddCollaborator, k.CycleRole, k.LoadMore, k.FilterActivity},
		{k.Lists, k.Tags, k.Command},
	}
}
