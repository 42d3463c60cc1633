package commands

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/policy/permissions"
)

// HandlerFunc runs one command. User mistakes are reported through Result;
// an error means the gateway or the store failed.
type HandlerFunc func(r *Request) (Result, error)

// Descriptor describes one command and the checks the dispatcher runs before it.
type Descriptor struct {
	Name       string
	Aliases    []string
	Capability permissions.Capability
	// MinArgs is checked before the handler; Usage is the reply when it is not met.
	MinArgs int
	Usage   string
	// Target makes the dispatcher resolve a target user and refuse to run without one.
	Target  bool
	Handler HandlerFunc
}

// Registry maps every command name and alias to its descriptor.
type Registry struct {
	byName map[string]*Descriptor
	names  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Descriptor{}}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" || d.Handler == nil {
		return errors.New("descriptor needs a name and a handler")
	}
	desc := &d
	for _, name := range append([]string{d.Name}, d.Aliases...) {
		key := strings.ToLower(name)
		if _, ok := r.byName[key]; ok {
			return errors.Errorf("command %q is already registered", key)
		}
		r.byName[key] = desc
	}
	r.names = append(r.names, strings.ToLower(d.Name))
	return nil
}

func (r *Registry) MustRegister(ds ...Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup is case-insensitive.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[strings.ToLower(name)]
	return d, ok
}

// Names lists canonical names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
