package command

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRepeat caps the repeat count a player may give a command.
const MaxRepeat = 40

// Input is one line of player input split into a verb and its arguments.
type Input struct {
	// Verb is the first word, lowercased. Empty for a blank line.
	Verb string
	// Args are the remaining whitespace separated words.
	Args []string
}

// Parse splits line on whitespace. Tabs and runs of spaces separate words
// like a single space does.
func Parse(line string) Input {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Input{}
	}
	in := Input{Verb: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		in.Args = fields[1:]
	}
	return in
}

// Arg returns the i-th argument lowercased, or "" when absent.
func (in Input) Arg(i int) string {
	if i < 0 || i >= len(in.Args) {
		return ""
	}
	return strings.ToLower(in.Args[i])
}

// Repeat reads the first argument as a repeat count. With no argument it
// returns 1.
//
// Postcondition: on success 1 <= n <= MaxRepeat.
func (in Input) Repeat() (int, error) {
	if len(in.Args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(in.Args[0])
	if err != nil || n < 1 || n > MaxRepeat {
		return 0, fmt.Errorf("%q is not a count from 1 to %d", in.Args[0], MaxRepeat)
	}
	return n, nil
}
