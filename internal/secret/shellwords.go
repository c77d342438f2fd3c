package secret

import (
	"strings"
	"unicode"
)

// splitShellWords splits an editor command line into argv, handling basic quoting.
// It supports single quotes, double quotes, and backslash escaping (outside single quotes).
func splitShellWords(s string) []string {
	var out []string
	var cur []rune
	inWord := false
	inSingle := false
	inDouble := false
	escaped := false

	flush := func() {
		if !inWord {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
		inWord = false
	}

	for _, r := range s {
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
			inWord = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			inWord = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			inWord = true
		case !inSingle && !inDouble && unicode.IsSpace(r):
			flush()
		default:
			cur = append(cur, r)
			inWord = true
		}
	}

	flush()
	return out
}

// editorArgv builds the argv for opening path. A "{}" or "%s" word is replaced by the
// path (for editors that need it mid-command); otherwise the path is appended.
func editorArgv(command, path string) []string {
	args := splitShellWords(command)
	if len(args) == 0 {
		args = []string{"vi"}
	}
	replaced := false
	for i, a := range args {
		if a == "{}" || a == "%s" {
			args[i] = path
			replaced = true
			continue
		}
		if strings.Contains(a, "{}") {
			args[i] = strings.ReplaceAll(a, "{}", path)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, path)
	}
	return args
}
