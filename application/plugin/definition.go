package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/application/schema"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/menu"
)

// PluginDef defines plugin identity, settings and lifecycle hooks.
type PluginDef struct {
	Name        string
	Signature   string
	Description string
	// Settings is a struct (or pointer to one) describing the plugin's
	// settings section. Its field values are the defaults.
	Settings any

	OnStart   func(ctx context.Context, s *sdk.Session) error
	OnEnable  func(ctx context.Context, s *sdk.Session) error
	OnDisable func(ctx context.Context, s *sdk.Session)
	OnStop    func(ctx context.Context, s *sdk.Session)
	OnMessage func(ctx context.Context, s *sdk.Session, msg entities.Message)
}

// PluginDefinition holds the parsed plugin definition and registered
// commands. It implements Plugin and MessageReceiver.
type PluginDefinition struct {
	def            PluginDef
	settingsSchema json.RawMessage
	commands       map[string]*commandEntry
	settings       any
	mu             sync.RWMutex
}

var (
	_ Plugin          = (*PluginDefinition)(nil)
	_ MessageReceiver = (*PluginDefinition)(nil)
)

// commandEntry holds a registered command.
type commandEntry struct {
	name        string
	description string
	menu        string
	handler     HandlerFunc
}

// DefinePlugin creates a new plugin definition.
// Call this once at package level in your plugin.
func DefinePlugin(def PluginDef) *PluginDefinition {
	settingsSchema := []byte("{}")
	if def.Settings != nil {
		var err error
		settingsSchema, err = schema.GenerateSchema(def.Settings, schema.WithTitle(def.Name+" settings"))
		if err != nil {
			panic("failed to generate settings schema: " + err.Error())
		}
	}

	return &PluginDefinition{
		def:            def,
		settingsSchema: settingsSchema,
		commands:       make(map[string]*commandEntry),
	}
}

// Info implements Plugin.
func (p *PluginDefinition) Info() entities.PluginInfo {
	return entities.PluginInfo{
		Name:        p.def.Name,
		Signature:   p.def.Signature,
		Description: p.def.Description,
	}
}

// Manifest returns the complete plugin manifest.
func (p *PluginDefinition) Manifest() *entities.Manifest {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cmds := make([]entities.CommandManifest, 0, len(p.commands))
	for _, name := range p.commandNames() {
		c := p.commands[name]
		cmds = append(cmds, entities.CommandManifest{
			Name:        c.name,
			Description: c.description,
			Menu:        c.menu,
		})
	}

	return &entities.Manifest{
		Name:           p.def.Name,
		Signature:      p.def.Signature,
		Description:    p.def.Description,
		SDKVersion:     sdk.Version,
		MinHostSDK:     sdk.MinHostSDK,
		SettingsSchema: p.settingsSchema,
		Commands:       cmds,
	}
}

// RegisterCommand registers a handler for the named command. menuTitle,
// when set, adds an item for the command to the plugin's menu.
func (p *PluginDefinition) RegisterCommand(name, description, menuTitle string, handler HandlerFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.commands[name]; ok {
		return fmt.Errorf("command %s already registered", name)
	}
	p.commands[name] = &commandEntry{
		name:        name,
		description: description,
		menu:        menuTitle,
		handler:     handler,
	}
	return nil
}

// GetHandler returns the handler for the named command.
func (p *PluginDefinition) GetHandler(name string) (HandlerFunc, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.commands[name]
	if !ok {
		return nil, false
	}
	return c.handler, true
}

// Settings returns the settings decoded on start: a pointer to a value of
// the PluginDef.Settings type. It is nil before start and without settings.
func (p *PluginDefinition) Settings() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// Start implements Plugin. It decodes and validates the settings section
// before running OnStart; invalid settings fail the start.
func (p *PluginDefinition) Start(ctx context.Context, s *sdk.Session) error {
	if p.def.Settings != nil {
		target, err := newSettings(p.def.Settings)
		if err != nil {
			return err
		}
		if err := sdk.ValidateSettings(s.Settings(), target); err != nil {
			return err
		}
		p.mu.Lock()
		p.settings = target
		p.mu.Unlock()
	}
	if p.def.OnStart != nil {
		return p.def.OnStart(ctx, s)
	}
	return nil
}

// Enable implements Plugin. It installs the registered commands and their
// menu items, then runs OnEnable. Both are withdrawn on disable.
func (p *PluginDefinition) Enable(ctx context.Context, s *sdk.Session) error {
	if err := p.installCommands(s); err != nil {
		return err
	}
	if p.def.OnEnable != nil {
		return p.def.OnEnable(ctx, s)
	}
	return nil
}

// Disable implements Plugin.
func (p *PluginDefinition) Disable(ctx context.Context, s *sdk.Session) {
	if p.def.OnDisable != nil {
		p.def.OnDisable(ctx, s)
	}
}

// Stop implements Plugin.
func (p *PluginDefinition) Stop(ctx context.Context, s *sdk.Session) {
	if p.def.OnStop != nil {
		p.def.OnStop(ctx, s)
	}
	p.mu.Lock()
	p.settings = nil
	p.mu.Unlock()
}

// ReceiveMessage implements MessageReceiver.
func (p *PluginDefinition) ReceiveMessage(ctx context.Context, s *sdk.Session, msg entities.Message) {
	if p.def.OnMessage != nil {
		p.def.OnMessage(ctx, s, msg)
	}
}

func (p *PluginDefinition) installCommands(s *sdk.Session) error {
	p.mu.RLock()
	entries := make([]*commandEntry, 0, len(p.commands))
	for _, name := range p.commandNames() {
		entries = append(entries, p.commands[name])
	}
	p.mu.RUnlock()

	var submenu menu.MenuID
	for _, c := range entries {
		cmd, err := s.Menus.FindOrCreateCommand(c.name, c.description)
		if err != nil {
			return err
		}
		if _, err := s.Menus.RegisterHandler(cmd, p.commandHandler(s, c), menu.Before); err != nil {
			return err
		}
		if c.menu == "" {
			continue
		}
		if submenu.IsZero() {
			root, err := s.Menus.Root()
			if err != nil {
				return err
			}
			if submenu, err = s.Menus.CreateMenu(root, p.def.Name, nil); err != nil {
				return err
			}
		}
		if _, err := s.Menus.AddItem(submenu, c.menu, cmd, nil); err != nil {
			return err
		}
	}
	return nil
}

func (p *PluginDefinition) commandHandler(s *sdk.Session, c *commandEntry) menu.CommandHandler {
	return func(ctx context.Context, phase entities.CommandPhase) entities.Disposition {
		req := &Request{
			Session:  s,
			Settings: p.Settings(),
			Command:  c.name,
			Phase:    phase,
		}
		disposition, err := c.handler(ctx, req)
		if err != nil {
			s.Logger().Error("plugin: command failed",
				"command", c.name, "phase", phase.String(), "error", err)
		}
		return disposition
	}
}

// commandNames returns registered names in sorted order. Callers hold mu.
func (p *PluginDefinition) commandNames() []string {
	names := make([]string, 0, len(p.commands))
	for name := range p.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// newSettings returns a pointer to a deep copy of defaults.
func newSettings(defaults any) (any, error) {
	t := reflect.TypeOf(defaults)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	target := reflect.New(t).Interface()
	data, err := json.Marshal(defaults)
	if err != nil {
		return nil, fmt.Errorf("encode default settings: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("decode default settings: %w", err)
	}
	return target, nil
}
