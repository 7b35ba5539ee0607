package command

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Registry resolves command words. Names and aliases share one namespace.
type Registry struct {
	words  map[string]*Command
	sorted []*Command
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: no word is used twice across names and aliases.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{words: make(map[string]*Command, len(cmds)*2)}
	aliasOf := make(map[string]string)
	for i := range cmds {
		cmd := &cmds[i]
		if prev, taken := r.words[cmd.Name]; taken {
			if prev.Name == cmd.Name {
				return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
			}
			return nil, fmt.Errorf("command name %q conflicts with an existing alias of %q", cmd.Name, aliasOf[cmd.Name])
		}
		r.words[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			prev, taken := r.words[alias]
			switch {
			case taken && prev.Name == alias:
				return nil, fmt.Errorf("alias %q of %q conflicts with command name %q", alias, cmd.Name, alias)
			case taken:
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, prev.Name, cmd.Name)
			}
			r.words[alias] = cmd
			aliasOf[alias] = cmd.Name
		}
		r.sorted = append(r.sorted, cmd)
	}
	slices.SortFunc(r.sorted, func(a, b *Command) int { return cmp.Compare(a.Name, b.Name) })
	return r, nil
}

// DefaultRegistry holds BuiltinCommands. It panics if they collide.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve finds a command by name or alias, ignoring case.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.words[strings.ToLower(word)]
	return cmd, ok
}

// ResolveLine parses line and resolves its verb.
//
// Postcondition: ok is false for a blank line or an unknown verb; the
// parsed input is returned either way.
func (r *Registry) ResolveLine(line string) (*Command, Input, bool) {
	in := Parse(line)
	if in.Verb == "" {
		return nil, in, false
	}
	cmd, ok := r.Resolve(in.Verb)
	return cmd, in, ok
}

// Commands lists every command by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.sorted)
}

// CommandsByCategory groups Commands by category.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}

var helpOrder = []string{CategoryLoot, CategoryWorld, CategoryMovement, CategorySystem}

// HelpText renders a "Category:" heading per category followed by one
// line per command with its aliases.
func (r *Registry) HelpText() string {
	byCat := r.CommandsByCategory()
	var b strings.Builder
	for _, cat := range helpOrder {
		if len(byCat[cat]) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(cat[:1]) + cat[1:] + ":\r\n")
		for _, cmd := range byCat[cat] {
			label := cmd.Name
			if len(cmd.Aliases) > 0 {
				label = fmt.Sprintf("%s (%s)", cmd.Name, strings.Join(cmd.Aliases, ", "))
			}
			fmt.Fprintf(&b, "  %-24s %s\r\n", label, cmd.Help)
		}
	}
	return b.String()
}
