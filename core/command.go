package core

import (
	"errors"
	"sync"

	"rcvip/protocol"
)

var (
	ErrUnknownCommand = errors.New("unknown command ID")
	ErrNotACommand    = errors.New("message ID is a response")
)

// CommandHandler is a function that handles a command with raw payload data.
// The handler decodes its own arguments and advances the data pointer.
type CommandHandler func(data *[]byte) error

// Command represents a registered command (host to MCU) or response
// (MCU to host, nil Handler)
type Command struct {
	ID      uint16
	Name    string
	Format  string // Argument format, e.g. "throttle=%i steer=%i"
	Handler CommandHandler
}

// CommandRegistry holds all registered commands and responses.
// IDs are assigned in registration order, so the firmware and host tools
// agree on them by registering the same set in the same order.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[uint16]*Command
	nameToID map[string]uint16
	nextID   uint16
}

var globalRegistry = NewCommandRegistry()

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
	}
}

// RegisterCommand registers a command handler in the global registry
func RegisterCommand(name string, format string, handler CommandHandler) uint16 {
	return globalRegistry.Register(name, format, handler)
}

// RegisterResponse registers a response message in the global registry
func RegisterResponse(name string, format string) uint16 {
	return globalRegistry.Register(name, format, nil)
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, format string, handler CommandHandler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.nameToID[name]; exists {
		return id
	}

	id := r.nextID
	r.nextID++

	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.nameToID[name] = id

	return id
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// GetCommandByName retrieves a command by name
func (r *CommandRegistry) GetCommandByName(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

// Count returns the number of registered commands and responses
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch decodes and runs every command in a payload
func (r *CommandRegistry) Dispatch(payload []byte) error {
	data := payload
	for len(data) > 0 {
		id, err := protocol.DecodeVLQUint(&data)
		if err != nil {
			return err
		}
		cmd, ok := r.GetCommand(uint16(id))
		if !ok {
			return ErrUnknownCommand
		}
		if cmd.Handler == nil {
			return ErrNotACommand
		}
		if err := cmd.Handler(&data); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes a message header and integer arguments for name
func (r *CommandRegistry) Encode(output protocol.OutputBuffer, name string, args ...int32) error {
	cmd, ok := r.GetCommandByName(name)
	if !ok {
		return ErrUnknownCommand
	}
	protocol.EncodeVLQUint(output, uint32(cmd.ID))
	for _, arg := range args {
		protocol.EncodeVLQInt(output, arg)
	}
	return nil
}

// DispatchPayload is a convenience function using the global registry
func DispatchPayload(payload []byte) error {
	return globalRegistry.Dispatch(payload)
}

// GetGlobalRegistry returns the global command registry
func GetGlobalRegistry() *CommandRegistry {
	return globalRegistry
}

// Responder delivers an encoded response payload to the host link
type Responder func(payload []byte)

var (
	responder   Responder
	responseOut = protocol.NewScratchOutput()
)

// SetResponder is called by target-specific code to register its host link
func SetResponder(r Responder) {
	responder = r
}

// SendResponse encodes a registered response and hands it to the responder.
// Main context only; the scratch buffer is reused between calls.
func SendResponse(name string, args ...int32) error {
	if responder == nil {
		return nil
	}
	responseOut.Reset()
	if err := globalRegistry.Encode(responseOut, name, args...); err != nil {
		return err
	}
	if responseOut.Overflowed() {
		return protocol.ErrPacketTooLarge
	}
	responder(responseOut.Result())
	return nil
}
