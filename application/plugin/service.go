package plugin

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
)

// Commands is embedded in a command set struct to name it.
// Tag format: `prefix:"example/beacon"`
type Commands struct{}

// Command is a field type for declaring commands.
// Tag format: `desc:"Command description" method:"OnToggle" menu:"Menu title"`
//
// The command is named prefix/snake_case(field). Without a method tag the
// method is "On" followed by the field name. Without a menu tag the command
// gets no menu item.
type Command struct{}

// Request carries one phase of a command invocation.
type Request struct {
	Session  *sdk.Session
	Settings any // decoded settings, nil when the plugin declares none
	Command  string
	Phase    entities.CommandPhase
}

// HandlerFunc is the signature for command handlers. An error is logged
// and the returned disposition still applies.
type HandlerFunc func(ctx context.Context, req *Request) (entities.Disposition, error)

// MustRegisterCommands registers a command set or panics.
// Use this in init() functions.
func MustRegisterCommands(plugin *PluginDefinition, set any) {
	if err := RegisterCommands(plugin, set); err != nil {
		panic(fmt.Sprintf("failed to register commands: %v", err))
	}
}

// RegisterCommands registers every Command field of a command set struct.
func RegisterCommands(plugin *PluginDefinition, set any) error {
	setType := reflect.TypeOf(set)
	setValue := reflect.ValueOf(set)

	if setType == nil || setType.Kind() != reflect.Pointer || setType.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("command set must be a pointer to struct, got %T", set)
	}

	structType := setType.Elem()

	prefix, err := extractPrefix(structType)
	if err != nil {
		return err
	}

	cmds, err := extractCommands(structType, prefix)
	if err != nil {
		return err
	}

	for _, c := range cmds {
		method := setValue.MethodByName(c.methodName)
		if !method.IsValid() {
			return fmt.Errorf("command set %s: no method %s for command %s (field %s)",
				prefix, c.methodName, c.name, c.fieldName)
		}

		handler, err := wrapMethod(method)
		if err != nil {
			return fmt.Errorf("command %s: %w", c.name, err)
		}

		if err := plugin.RegisterCommand(c.name, c.description, c.menu, handler); err != nil {
			return err
		}
	}

	return nil
}

// extractPrefix finds the embedded Commands field and reads its prefix.
func extractPrefix(t reflect.Type) (string, error) {
	for i := range t.NumField() {
		field := t.Field(i)
		if field.Type == reflect.TypeFor[Commands]() {
			prefix := strings.Trim(field.Tag.Get("prefix"), "/")
			if prefix == "" {
				return "", fmt.Errorf("Commands field missing 'prefix' tag")
			}
			return prefix, nil
		}
	}
	return "", fmt.Errorf("struct must embed plugin.Commands")
}

// commandInfo holds command metadata extracted from struct fields.
type commandInfo struct {
	fieldName   string
	methodName  string
	name        string // prefix/snake_case
	description string
	menu        string
}

// extractCommands finds all Command fields and extracts their metadata.
func extractCommands(t reflect.Type, prefix string) ([]commandInfo, error) {
	var cmds []commandInfo

	for i := range t.NumField() {
		field := t.Field(i)
		if field.Type != reflect.TypeFor[Command]() {
			continue
		}
		methodName := field.Tag.Get("method")
		if methodName == "" {
			methodName = "On" + field.Name
		}
		cmds = append(cmds, commandInfo{
			fieldName:   field.Name,
			methodName:  methodName,
			name:        prefix + "/" + toSnakeCase(field.Name),
			description: field.Tag.Get("desc"),
			menu:        field.Tag.Get("menu"),
		})
	}

	if len(cmds) == 0 {
		return nil, fmt.Errorf("command set has no commands (no Command fields)")
	}

	return cmds, nil
}

// wrapMethod wraps a reflected method as a HandlerFunc.
func wrapMethod(method reflect.Value) (HandlerFunc, error) {
	methodType := method.Type()

	// Expected signature: func(ctx context.Context, req *Request) (entities.Disposition, error)
	if methodType.NumIn() != 2 || methodType.NumOut() != 2 {
		return nil, fmt.Errorf("method must have signature (context.Context, *Request) (entities.Disposition, error)")
	}

	if !methodType.In(0).Implements(reflect.TypeFor[context.Context]()) {
		return nil, fmt.Errorf("first parameter must be context.Context")
	}
	if methodType.In(1) != reflect.TypeFor[*Request]() {
		return nil, fmt.Errorf("second parameter must be *plugin.Request")
	}
	if methodType.Out(0) != reflect.TypeFor[entities.Disposition]() {
		return nil, fmt.Errorf("first return value must be entities.Disposition")
	}
	if !methodType.Out(1).Implements(reflect.TypeFor[error]()) {
		return nil, fmt.Errorf("second return value must be error")
	}

	return func(ctx context.Context, req *Request) (entities.Disposition, error) {
		results := method.Call([]reflect.Value{
			reflect.ValueOf(ctx),
			reflect.ValueOf(req),
		})

		disposition := results[0].Interface().(entities.Disposition)

		var err error
		if !results[1].IsNil() {
			err = results[1].Interface().(error)
		}

		return disposition, err
	}, nil
}

// toSnakeCase converts PascalCase to snake_case.
var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

func toSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}
