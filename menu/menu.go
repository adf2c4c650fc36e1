// Package menu builds the plugin's menus and dispatches host commands.
//
// Menus hang off the plugin's slot in the host Plugins menu. Destroying a
// menu destroys its submenus, and every MenuID and ItemIndex inside the
// destroyed subtree fails with UseAfterRelease afterwards.
package menu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skyframe-dev/xplm-sdk/dispatch"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// Host is the slice of the host API the dispatcher needs.
type Host interface {
	ports.Menus
	ports.Commands
}

// MenuID identifies a menu.
type MenuID = handle.Handle[handle.MenuTag]

// ItemIndex identifies one item of a menu. It stays valid while the item
// exists, even when earlier items are removed.
type ItemIndex struct {
	menu MenuID
	slot int
}

// Menu returns the menu holding the item.
func (i ItemIndex) Menu() MenuID { return i.menu }

func (i ItemIndex) String() string { return fmt.Sprintf("%s[%d]", i.menu, i.slot) }

// Handler is called on the sim thread when an item without a command is
// picked.
type Handler func(ctx context.Context, item ItemIndex, clientData any)

type itemNode struct {
	clientData any
	title      string
	cmd        CommandRef
	submenu    MenuID
	separator  bool
	removed    bool
}

type menuNode struct {
	handler   Handler
	title     string
	items     []*itemNode
	id        MenuID
	parent    MenuID
	parentIdx int
	raw       ports.RawHandle
	refcon    ports.Refcon
	root      bool
	destroyed bool
}

// hostIndex converts a stable slot to the host's current item index.
func (n *menuNode) hostIndex(slot int) int {
	index := 0
	for _, it := range n.items[:slot] {
		if !it.removed {
			index++
		}
	}
	return index
}

// Dispatcher owns the plugin's menus, commands and command handlers.
type Dispatcher struct {
	host     Host
	registry *handle.Registry
	calls    *callctx.Tracker
	table    *dispatch.Table
	logger   *slog.Logger
	menus    map[MenuID]*menuNode
	commands map[string]CommandRef
	root     MenuID
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher.
func New(host Host, registry *handle.Registry, calls *callctx.Tracker, table *dispatch.Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		host:     host,
		registry: registry,
		calls:    calls,
		table:    table,
		logger:   slog.Default(),
		menus:    make(map[MenuID]*menuNode),
		commands: make(map[string]CommandRef),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the plugin's slot in the host Plugins menu. Items added to
// it directly should carry a command; picks of other items are ignored.
// Releasing the root removes every item the plugin added to it.
func (d *Dispatcher) Root() (MenuID, error) {
	if err := d.calls.Require("menu.root", callctx.Sim...); err != nil {
		return MenuID{}, err
	}
	if handle.IsValid(d.registry, d.root) {
		return d.root, nil
	}

	node := &menuNode{title: "Plugins", root: true, raw: d.host.FindPluginsMenu()}
	id, err := handle.Acquire[handle.MenuTag](d.registry, node.raw, func(ports.RawHandle) {
		d.destroy(node)
	})
	if err != nil {
		return MenuID{}, err
	}
	node.id = id
	d.menus[id] = node
	d.root = id
	return id, nil
}

func (d *Dispatcher) menu(op string, id MenuID) (*menuNode, error) {
	if _, err := handle.Raw(d.registry, id); err != nil {
		return nil, err
	}
	if err := d.calls.Require(op, callctx.Sim...); err != nil {
		return nil, err
	}
	return d.menus[id], nil
}

func (d *Dispatcher) item(op string, item ItemIndex) (*menuNode, *itemNode, error) {
	node, err := d.menu(op, item.menu)
	if err != nil {
		return nil, nil, err
	}
	if item.slot < 0 || item.slot >= len(node.items) || node.items[item.slot].removed {
		return nil, nil, &errors.UseAfterReleaseError{Kind: "menu item", Index: uint32(max(item.slot, 0))}
	}
	return node, node.items[item.slot], nil
}

// CreateMenu appends an item titled title to parent and attaches a new
// submenu to it. handler receives picks of the submenu's items.
func (d *Dispatcher) CreateMenu(parent MenuID, title string, handler Handler) (MenuID, error) {
	p, err := d.menu("menu.create", parent)
	if err != nil {
		return MenuID{}, err
	}

	slot := len(p.items)
	hostIndex := d.host.AppendMenuItem(p.raw, title, 0)
	if hostIndex < 0 {
		return MenuID{}, &errors.AcquisitionFailedError{Kind: "menu", Target: title, Reason: "host refused the parent item"}
	}
	parentItem := &itemNode{title: title}
	p.items = append(p.items, parentItem)

	node := &menuNode{title: title, handler: handler, parent: parent, parentIdx: slot}
	node.refcon = d.table.AddMenu("menu:"+title, func(ctx context.Context, itemRefcon ports.Refcon) {
		d.selected(ctx, node, itemRefcon)
	})
	node.raw = d.host.CreateMenu(title, p.raw, hostIndex, node.refcon)

	id, err := handle.Acquire[handle.MenuTag](d.registry, node.raw, func(ports.RawHandle) {
		d.destroy(node)
	})
	if err != nil {
		d.table.Remove(node.refcon)
		d.host.RemoveMenuItem(p.raw, hostIndex)
		parentItem.removed = true
		return MenuID{}, &errors.AcquisitionFailedError{Kind: "menu", Target: title}
	}
	node.id = id
	parentItem.submenu = id
	d.menus[id] = node
	return id, nil
}

// AppendSubmenu is CreateMenu.
func (d *Dispatcher) AppendSubmenu(parent MenuID, title string, handler Handler) (MenuID, error) {
	return d.CreateMenu(parent, title, handler)
}

func (d *Dispatcher) selected(ctx context.Context, node *menuNode, itemRefcon ports.Refcon) {
	slot := int(itemRefcon) - 1
	if node.destroyed || node.handler == nil || slot < 0 || slot >= len(node.items) {
		return
	}
	it := node.items[slot]
	if it.removed {
		return
	}
	node.handler(ctx, ItemIndex{menu: node.id, slot: slot}, it.clientData)
}

// AddItem appends an item. With a valid cmd the host triggers the command
// when the item is picked; otherwise the menu's handler receives the item
// and clientData.
func (d *Dispatcher) AddItem(menu MenuID, title string, cmd CommandRef, clientData any) (ItemIndex, error) {
	node, err := d.menu("menu.add_item", menu)
	if err != nil {
		return ItemIndex{}, err
	}

	slot := len(node.items)
	var hostIndex int
	if cmd.IsZero() {
		hostIndex = d.host.AppendMenuItem(node.raw, title, ports.Refcon(slot+1))
	} else {
		raw, err := handle.Raw(d.registry, cmd)
		if err != nil {
			return ItemIndex{}, err
		}
		hostIndex = d.host.AppendMenuItemWithCommand(node.raw, title, raw)
	}
	if hostIndex < 0 {
		return ItemIndex{}, &errors.AcquisitionFailedError{Kind: "menu item", Target: title}
	}

	node.items = append(node.items, &itemNode{title: title, cmd: cmd, clientData: clientData})
	return ItemIndex{menu: menu, slot: slot}, nil
}

// AddSeparator appends a separator line.
func (d *Dispatcher) AddSeparator(menu MenuID) (ItemIndex, error) {
	node, err := d.menu("menu.add_separator", menu)
	if err != nil {
		return ItemIndex{}, err
	}
	d.host.AppendMenuSeparator(node.raw)
	node.items = append(node.items, &itemNode{separator: true})
	return ItemIndex{menu: menu, slot: len(node.items) - 1}, nil
}

// SetItemTitle renames an item.
func (d *Dispatcher) SetItemTitle(item ItemIndex, title string) error {
	node, it, err := d.item("menu.set_title", item)
	if err != nil {
		return err
	}
	d.host.SetMenuItemName(node.raw, node.hostIndex(item.slot), title)
	it.title = title
	return nil
}

// CheckItem sets an item's checkmark.
func (d *Dispatcher) CheckItem(item ItemIndex, check entities.MenuCheck) error {
	node, _, err := d.item("menu.check", item)
	if err != nil {
		return err
	}
	d.host.CheckMenuItem(node.raw, node.hostIndex(item.slot), check)
	return nil
}

// EnableItem greys an item out or back in.
func (d *Dispatcher) EnableItem(item ItemIndex, enabled bool) error {
	node, _, err := d.item("menu.enable", item)
	if err != nil {
		return err
	}
	d.host.EnableMenuItem(node.raw, node.hostIndex(item.slot), enabled)
	return nil
}

// ClientData returns the payload the item was added with.
func (d *Dispatcher) ClientData(item ItemIndex) (any, error) {
	_, it, err := d.item("menu.client_data", item)
	if err != nil {
		return nil, err
	}
	return it.clientData, nil
}

// Title returns an item's current title.
func (d *Dispatcher) Title(item ItemIndex) (string, error) {
	_, it, err := d.item("menu.title", item)
	if err != nil {
		return "", err
	}
	return it.title, nil
}

// RemoveItem deletes an item. An item that opens a submenu destroys the
// submenu too. Other ItemIndexes of the menu stay valid.
func (d *Dispatcher) RemoveItem(item ItemIndex) error {
	node, it, err := d.item("menu.remove_item", item)
	if err != nil {
		return err
	}
	if !it.submenu.IsZero() && handle.IsValid(d.registry, it.submenu) {
		// Destroying the submenu removes its parent item.
		return handle.Release(d.registry, it.submenu)
	}
	d.host.RemoveMenuItem(node.raw, node.hostIndex(item.slot))
	it.removed = true
	return nil
}

// DestroyMenu destroys menu and every submenu below it.
func (d *Dispatcher) DestroyMenu(menu MenuID) error {
	if _, err := d.menu("menu.destroy", menu); err != nil {
		return err
	}
	return handle.Release(d.registry, menu)
}

// destroy is the release function of every menu handle.
func (d *Dispatcher) destroy(node *menuNode) {
	if node.destroyed {
		return
	}
	node.destroyed = true
	delete(d.menus, node.id)

	if node.root {
		// The Plugins menu belongs to the host; only withdraw our items.
		for slot := len(node.items) - 1; slot >= 0; slot-- {
			it := node.items[slot]
			if !it.removed && !it.submenu.IsZero() && handle.IsValid(d.registry, it.submenu) {
				_ = handle.Release(d.registry, it.submenu)
			}
			if !it.removed {
				d.host.RemoveMenuItem(node.raw, node.hostIndex(slot))
				it.removed = true
			}
		}
		return
	}

	for _, it := range node.items {
		if !it.submenu.IsZero() {
			d.forgetSubtree(it.submenu)
		}
	}
	d.host.DestroyMenu(node.raw)
	d.table.Remove(node.refcon)

	if p, ok := d.menus[node.parent]; ok && !p.destroyed {
		if it := p.items[node.parentIdx]; !it.removed {
			d.host.RemoveMenuItem(p.raw, p.hostIndex(node.parentIdx))
			it.removed = true
		}
	}
	d.logger.Debug("menu: destroyed", "title", node.title, "id", node.id.String())
}

// forgetSubtree invalidates a submenu the host destroys along with its
// parent.
func (d *Dispatcher) forgetSubtree(id MenuID) {
	node, ok := d.menus[id]
	if !ok || node.destroyed {
		return
	}
	node.destroyed = true
	delete(d.menus, id)
	for _, it := range node.items {
		if !it.submenu.IsZero() {
			d.forgetSubtree(it.submenu)
		}
	}
	d.table.Remove(node.refcon)
	_ = handle.Forget(d.registry, id)
}
