package engine

import (
	"regexp"
	"strings"
)

// reservedNames are cmd.exe dynamic and well-known environment variables.
// A token must never shadow one of them: `set PATH=x` in the preamble would
// break every command that follows.
// Reference: https://learn.microsoft.com/en-us/windows-server/administration/windows-commands/set_1
var reservedNames = []string{
	// Dynamic variables
	"cd", "date", "time", "random", "errorlevel", "cmdextversion",
	"cmdcmdline", "highestnumanodenumber",
	// Environment
	"path", "pathext", "comspec", "systemroot", "systemdrive", "windir",
	"temp", "tmp", "username", "userprofile", "userdomain", "homedrive",
	"homepath", "appdata", "localappdata", "programdata", "programfiles",
	"public", "os", "prompt", "computername", "processor",
	"number", "logonserver", "sessionname", "psmodulepath",
}

// tokenKey folds a token for uniqueness checks: cmd.exe variable names are
// case-insensitive, so "abc" and "ABC" are the same variable.
func tokenKey(tok string) string {
	return strings.ToLower(tok)
}

var (
	// reUserVariable matches an existing %name% reference. The character
	// class spans _ through ~ so it also covers backtick and braces.
	reUserVariable = regexp.MustCompile("%[a-zA-Z0-9_`{|}~!@#$^&/.,<>;:'\"=-]+%")
	// reSetStatement matches a keyword assignment such as "set x=1".
	reSetStatement = regexp.MustCompile(`(?i)^\s*set\s+.+=.+`)
)

// isLabel reports whether line starts a label (":name"), which differs
// from the "::" comment marker.
func isLabel(line string) bool {
	return strings.HasPrefix(line, ":") && !strings.HasPrefix(line, "::")
}

// isOpaqueLine reports whether a source line references or defines user
// variables or labels. Such lines are copied through unmodified.
func isOpaqueLine(line string) bool {
	return reUserVariable.MatchString(line) || isLabel(line) || reSetStatement.MatchString(line)
}
