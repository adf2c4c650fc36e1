package host

import (
	"fmt"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

type simItem struct {
	name      string
	refcon    ports.Refcon
	command   ports.RawHandle
	submenu   ports.RawHandle
	check     entities.MenuCheck
	separator bool
	disabled  bool
}

type simMenu struct {
	name       string
	items      []*simItem
	raw        ports.RawHandle
	parent     ports.RawHandle
	refcon     ports.Refcon
	parentItem int
}

// MenuItem is a snapshot of one menu item for assertions.
type MenuItem struct {
	Name       string
	Check      entities.MenuCheck
	Separator  bool
	Enabled    bool
	HasSubmenu bool
	HasCommand bool
}

// FindPluginsMenu implements ports.Host.
func (s *Simulator) FindPluginsMenu() ports.RawHandle { return s.pluginsMenu }

// CreateMenu implements ports.Host. The parent item must exist and must not
// already carry a submenu.
func (s *Simulator) CreateMenu(name string, parent ports.RawHandle, parentItem int, refcon ports.Refcon) ports.RawHandle {
	p, ok := s.menus[parent]
	if !ok || parentItem < 0 || parentItem >= len(p.items) || p.items[parentItem].submenu != 0 {
		return 0
	}
	raw := s.alloc()
	s.menus[raw] = &simMenu{raw: raw, name: name, parent: parent, parentItem: parentItem, refcon: refcon}
	p.items[parentItem].submenu = raw
	return raw
}

// DestroyMenu implements ports.Host. Submenus go with their parent.
func (s *Simulator) DestroyMenu(menu ports.RawHandle) {
	m, ok := s.menus[menu]
	if !ok || menu == s.pluginsMenu {
		return
	}
	for _, it := range m.items {
		if it.submenu != 0 {
			s.DestroyMenu(it.submenu)
		}
	}
	if p, ok := s.menus[m.parent]; ok {
		for _, it := range p.items {
			if it.submenu == menu {
				it.submenu = 0
			}
		}
	}
	delete(s.menus, menu)
}

func (s *Simulator) appendItem(menu ports.RawHandle, it *simItem) int {
	m, ok := s.menus[menu]
	if !ok {
		return -1
	}
	m.items = append(m.items, it)
	return len(m.items) - 1
}

// AppendMenuItem implements ports.Host.
func (s *Simulator) AppendMenuItem(menu ports.RawHandle, name string, itemRefcon ports.Refcon) int {
	return s.appendItem(menu, &simItem{name: name, refcon: itemRefcon})
}

// AppendMenuItemWithCommand implements ports.Host.
func (s *Simulator) AppendMenuItemWithCommand(menu ports.RawHandle, name string, cmd ports.RawHandle) int {
	if _, ok := s.commands[cmd]; !ok {
		return -1
	}
	return s.appendItem(menu, &simItem{name: name, command: cmd})
}

// AppendMenuSeparator implements ports.Host.
func (s *Simulator) AppendMenuSeparator(menu ports.RawHandle) {
	s.appendItem(menu, &simItem{separator: true})
}

func (s *Simulator) item(menu ports.RawHandle, index int) *simItem {
	m, ok := s.menus[menu]
	if !ok || index < 0 || index >= len(m.items) {
		return nil
	}
	return m.items[index]
}

// SetMenuItemName implements ports.Host.
func (s *Simulator) SetMenuItemName(menu ports.RawHandle, index int, name string) {
	if it := s.item(menu, index); it != nil {
		it.name = name
	}
}

// CheckMenuItem implements ports.Host.
func (s *Simulator) CheckMenuItem(menu ports.RawHandle, index int, check entities.MenuCheck) {
	if it := s.item(menu, index); it != nil {
		it.check = check
	}
}

// EnableMenuItem implements ports.Host.
func (s *Simulator) EnableMenuItem(menu ports.RawHandle, index int, enabled bool) {
	if it := s.item(menu, index); it != nil {
		it.disabled = !enabled
	}
}

// RemoveMenuItem implements ports.Host. Later items shift down by one.
func (s *Simulator) RemoveMenuItem(menu ports.RawHandle, index int) {
	m, ok := s.menus[menu]
	if !ok || index < 0 || index >= len(m.items) {
		return
	}
	if sub := m.items[index].submenu; sub != 0 {
		s.DestroyMenu(sub)
	}
	m.items = append(m.items[:index], m.items[index+1:]...)
	for _, it := range m.items[index:] {
		if sub, ok := s.menus[it.submenu]; ok {
			sub.parentItem--
		}
	}
}

// walk follows item names from the Plugins menu. It returns the menu holding
// the last item and that item's index.
func (s *Simulator) walk(path []string) (*simMenu, int, error) {
	if len(path) == 0 {
		return nil, 0, fmt.Errorf("host: empty menu path")
	}
	m := s.menus[s.pluginsMenu]
	for depth, name := range path {
		index := -1
		for i, it := range m.items {
			if !it.separator && it.name == name {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, 0, fmt.Errorf("host: no menu item %q in %q", name, m.name)
		}
		if depth == len(path)-1 {
			return m, index, nil
		}
		sub, ok := s.menus[m.items[index].submenu]
		if !ok {
			return nil, 0, fmt.Errorf("host: menu item %q has no submenu", name)
		}
		m = sub
	}
	return nil, 0, fmt.Errorf("host: unreachable menu path %v", path)
}

// ClickMenuItem picks the item reached by following names from the Plugins
// menu, e.g. ClickMenuItem("Test", "Action"). Items bound to a command
// trigger it; other items call the owning menu's handler.
func (s *Simulator) ClickMenuItem(path ...string) error {
	m, index, err := s.walk(path)
	if err != nil {
		return err
	}
	it := m.items[index]
	switch {
	case it.disabled:
		return fmt.Errorf("host: menu item %q is disabled", it.name)
	case it.submenu != 0:
		return fmt.Errorf("host: menu item %q opens a submenu", it.name)
	case it.command != 0:
		s.CommandOnce(it.command)
	default:
		s.requireSink().MenuSelected(m.refcon, it.refcon)
	}
	return nil
}

// MenuItems lists the items of the submenu reached by path. An empty path
// lists the Plugins menu.
func (s *Simulator) MenuItems(path ...string) ([]MenuItem, error) {
	m := s.menus[s.pluginsMenu]
	if len(path) > 0 {
		parent, index, err := s.walk(path)
		if err != nil {
			return nil, err
		}
		sub, ok := s.menus[parent.items[index].submenu]
		if !ok {
			return nil, fmt.Errorf("host: menu item %q has no submenu", path[len(path)-1])
		}
		m = sub
	}
	out := make([]MenuItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, MenuItem{
			Name:       it.name,
			Check:      it.check,
			Separator:  it.separator,
			Enabled:    !it.disabled,
			HasSubmenu: it.submenu != 0,
			HasCommand: it.command != 0,
		})
	}
	return out, nil
}

// Menus returns the number of live menus, not counting the Plugins menu.
func (s *Simulator) Menus() int { return len(s.menus) - 1 }
