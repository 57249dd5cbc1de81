package commands

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type Command struct {
	Name        string
	Aliases     []string
	ArgFormat   string
	Description string
	Callback    interface{}
}

func (cmd *Command) String() string {
	if cmd.ArgFormat == "" {
		return "#" + cmd.Name
	}
	return fmt.Sprintf("#%s %s", cmd.Name, cmd.ArgFormat)
}

func (cmd *Command) Detailed() string {
	aliases := ""
	if len(cmd.Aliases) > 0 {
		aliases = fmt.Sprintf("(alias %s)", strings.Join(cmd.Aliases, ", "))
	}
	return fmt.Sprintf("%s: %s\n%s", cmd.String(), aliases, cmd.Description)
}

// CommandGroup dispatches textual commands to typed callbacks. Callback
// parameters are filled from the arguments in order: int, float64, bool and
// string are required, pointers to int, float64 or bool are optional, a
// []string receives the raw arguments and a parameter of the User type
// receives whoever issued the command.
type CommandGroup[User any] struct {
	// e.g. uhc
	namespace string
	commands  map[string]*Command
	message   func(User, string)
}

func NewCommandGroup[User any](namespace string, message func(User, string)) *CommandGroup[User] {
	return &CommandGroup[User]{
		namespace: namespace,
		commands:  make(map[string]*Command),
		message:   message,
	}
}

func (c *CommandGroup[User]) validateCallback(callback interface{}) error {
	type_ := reflect.TypeOf(callback)

	if type_ == nil || type_.Kind() != reflect.Func {
		return fmt.Errorf("callback must be a function")
	}

	if type_.NumOut() > 1 {
		return fmt.Errorf("callback can only have a single return value")
	}

	if type_.NumOut() == 1 {
		errorType := reflect.TypeOf((*error)(nil)).Elem()
		if type_.Out(0) != errorType {
			return fmt.Errorf("callback return type must be error")
		}
	}

	haveOptional := false

	userType := reflect.TypeOf((*User)(nil)).Elem()
	for i := 0; i < type_.NumIn(); i++ {
		argType := type_.In(i)

		if argType == userType {
			continue
		}

		switch argType.Kind() {
		case reflect.Slice:
			if argType.Elem().Kind() != reflect.String {
				return fmt.Errorf("slice parameter %s can only be string", argType.String())
			}
		case reflect.Int, reflect.String, reflect.Bool, reflect.Float64:
			if haveOptional {
				return fmt.Errorf("required parameter cannot follow optional")
			}
		case reflect.Pointer:
			haveOptional = true

			elemType := argType.Elem()
			switch elemType.Kind() {
			// String omitted intentionally
			case reflect.Int, reflect.Bool, reflect.Float64:
				continue
			default:
				return fmt.Errorf("invalid optional callback parameter type %s", elemType.String())
			}
		default:
			return fmt.Errorf("invalid callback parameter type %s", argType.String())
		}
	}

	return nil
}

func (c *CommandGroup[User]) Register(command Command) error {
	err := c.validateCallback(command.Callback)
	if err != nil {
		return err
	}

	if _, exists := c.commands[command.Name]; exists {
		return fmt.Errorf("command %s already registered", command.Name)
	}

	c.commands[command.Name] = &command

	for _, alias := range command.Aliases {
		c.commands[alias] = &command
	}

	return nil
}

func (c *CommandGroup[User]) Name() string {
	return c.namespace
}

func (c *CommandGroup[User]) Help() string {
	commands := make([]string, 0)

	for name, command := range c.commands {
		// skip aliases
		if name != command.Name {
			continue
		}
		commands = append(commands, name)
	}

	sort.Strings(commands)
	return fmt.Sprintf("%s: %s", c.Name(), strings.Join(commands, ", "))
}

func (c *CommandGroup[User]) resolve(args []string) (*Command, []string) {
	if len(args) == 0 {
		return nil, nil
	}

	// First check if the namespace is included.
	target := strings.TrimPrefix(args[0], "#")
	commandArguments := args[1:]
	if target == c.namespace {
		// You can't just address the namespace.
		if len(args) == 1 {
			return nil, nil
		}

		target = args[1]
		commandArguments = args[2:]
	}

	command, ok := c.commands[target]
	if !ok {
		return nil, nil
	}

	return command, commandArguments
}

// Whether or not this command group can respond to this command.
func (c *CommandGroup[User]) CanHandle(args []string) bool {
	command, _ := c.resolve(args)
	return command != nil
}

var NIL = reflect.Value{}

func parseArg(type_ reflect.Type, argument string) (reflect.Value, error) {
	switch type_.Kind() {
	case reflect.Int:
		value, err := strconv.Atoi(argument)
		if err != nil {
			return NIL, fmt.Errorf("expected number argument")
		}

		return reflect.ValueOf(value), nil
	case reflect.Float64:
		value, err := strconv.ParseFloat(argument, 64)
		if err != nil {
			return NIL, fmt.Errorf("expected decimal argument")
		}

		return reflect.ValueOf(value), nil
	case reflect.Bool:
		value := false

		switch argument {
		case "yes", "1", "on", "true":
			value = true
		case "no", "0", "off", "false":
			value = false
		default:
			return NIL, fmt.Errorf("expected boolean argument")
		}

		return reflect.ValueOf(value), nil
	case reflect.String:
		return reflect.ValueOf(argument), nil
	}

	return NIL, fmt.Errorf("could not parse argument")
}

func (c *CommandGroup[User]) Handle(user User, args []string) error {
	command, commandArgs := c.resolve(args)
	if command == nil {
		return fmt.Errorf("%s: unknown command", c.Name())
	}

	callback := command.Callback
	callbackType := reflect.TypeOf(callback)
	callbackArgs := make([]reflect.Value, 0)
	originalArgs := commandArgs
	userType := reflect.TypeOf((*User)(nil)).Elem()

	for i := 0; i < callbackType.NumIn(); i++ {
		argType := callbackType.In(i)

		var value reflect.Value
		switch {
		case argType == userType:
			value = reflect.ValueOf(&user).Elem()
		case argType.Kind() == reflect.Slice:
			value = reflect.ValueOf(originalArgs)
		case argType.Kind() == reflect.Pointer:
			if len(commandArgs) == 0 {
				value = reflect.Zero(argType)
				break
			}
			argument := commandArgs[0]
			commandArgs = commandArgs[1:]
			parsedValue, err := parseArg(argType.Elem(), argument)
			if err != nil {
				return err
			}

			pointer := reflect.New(argType.Elem())
			pointer.Elem().Set(parsedValue)
			value = pointer
		default:
			if len(commandArgs) == 0 {
				return fmt.Errorf("usage: %s", command.String())
			}
			argument := commandArgs[0]
			commandArgs = commandArgs[1:]
			parsedValue, err := parseArg(argType, argument)
			if err != nil {
				return err
			}

			value = parsedValue
		}

		callbackArgs = append(callbackArgs, value)
	}

	results := reflect.ValueOf(callback).Call(callbackArgs)
	if len(results) > 0 {
		result := results[0]
		if err, ok := result.Interface().(error); ok {
			return err
		}
	}

	return nil
}

// Reply sends a message back to the user through the group's message
// function.
func (c *CommandGroup[User]) Reply(user User, message string) {
	if c.message == nil {
		return
	}
	c.message(user, message)
}

type Commandable interface {
	CanHandle([]string) bool
	Help() string
}
