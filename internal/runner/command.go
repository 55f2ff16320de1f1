package runner

import "strings"

// Command is an immutable description of one external invocation.
type Command struct {
	program string
	args    []string
}

func NewCommand(program string, args ...string) Command {
	return Command{
		program: program,
		args:    append([]string(nil), args...),
	}
}

func (c Command) Program() string {
	return c.program
}

func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.program}, c.args...)
}

func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// execArgs maps a command to the process actually started on goos.
// Windows goes through cmd.exe so that shell-resolved programs work.
func execArgs(goos string, c Command) (string, []string) {
	if goos == "windows" {
		return "cmd", append([]string{"/C", c.program}, c.args...)
	}
	return c.program, c.Args()
}
