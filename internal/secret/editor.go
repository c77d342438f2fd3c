package secret

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CancelMarker at the start of the edited content aborts the edit.
const CancelMarker = "# CANCEL"

// EditorError is a failed editor round trip (non-zero exit or filesystem error).
type EditorError struct {
	Op  string
	Err error
}

func (e *EditorError) Error() string { return fmt.Sprintf("editor %s: %v", e.Op, e.Err) }

func (e *EditorError) Unwrap() error { return e.Err }

type Result struct {
	Content   string
	Cancelled bool
}

// EditorCommand resolves the user's editor the usual way.
func EditorCommand() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}
	return "vi"
}

type Editor struct {
	Command string
	// Dir returns the directory for temp files; defaults to PrivateDir.
	Dir func() (string, error)
}

func NewEditor(command string) *Editor {
	if strings.TrimSpace(command) == "" {
		command = EditorCommand()
	}
	return &Editor{Command: command, Dir: PrivateDir}
}

// Session is one prepared round trip. Finish must always be called.
type Session struct {
	Path string
	Cmd  *exec.Cmd
}

var unsafeHint = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Prepare writes content to an owner-only temp file and builds the editor command.
func (e *Editor) Prepare(content, hint string) (*Session, error) {
	dirFn := e.Dir
	if dirFn == nil {
		dirFn = PrivateDir
	}
	dir, err := dirFn()
	if err != nil {
		return nil, &EditorError{Op: "prepare", Err: err}
	}
	hint = strings.Trim(unsafeHint.ReplaceAllString(hint, "-"), "-")
	if hint == "" {
		hint = "item"
	}
	if len(hint) > 40 {
		hint = hint[:40]
	}
	path := filepath.Join(dir, fmt.Sprintf("bwtui-%s-%s.yaml", hint, uuid.NewString()))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, &EditorError{Op: "prepare", Err: err}
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, &EditorError{Op: "prepare", Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, &EditorError{Op: "prepare", Err: err}
	}

	return &Session{Path: path, Cmd: e.CommandFor(path)}, nil
}

// CommandFor builds the editor command for an existing file.
func (e *Editor) CommandFor(path string) *exec.Cmd {
	argv := editorArgv(e.Command, path)
	return exec.Command(argv[0], argv[1:]...)
}

// Finish reads the edited content back and removes the temp file, whatever happened.
func (s *Session) Finish(runErr error) (Result, error) {
	defer func() { _ = os.Remove(s.Path) }()

	if runErr != nil {
		return Result{}, &EditorError{Op: "run", Err: runErr}
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return Result{}, &EditorError{Op: "read", Err: err}
	}
	content := string(b)
	if IsCancelled(content) {
		return Result{Cancelled: true}, nil
	}
	return Result{Content: content}, nil
}

// IsCancelled reports whether content is empty or starts with the cancel marker.
func IsCancelled(content string) bool {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if strings.TrimSpace(trimmed) == "" {
		return true
	}
	return len(trimmed) >= len(CancelMarker) && strings.EqualFold(trimmed[:len(CancelMarker)], CancelMarker)
}

// PrivateDir returns an owner-only directory for temp files, preferring volatile
// storage: $XDG_RUNTIME_DIR, then /dev/shm on Linux, then the user cache dir.
func PrivateDir() (string, error) {
	var candidates []string
	if v := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); v != "" {
		candidates = append(candidates, filepath.Join(v, "bwtui"))
	}
	if runtime.GOOS == "linux" {
		candidates = append(candidates, filepath.Join("/dev/shm", "bwtui-"+strconv.Itoa(os.Getuid())))
	}
	if cache, err := os.UserCacheDir(); err == nil {
		candidates = append(candidates, filepath.Join(cache, "bwtui", "tmp"))
	}
	var errs []error
	for _, dir := range candidates {
		if err := ensurePrivateDir(dir); err != nil {
			errs = append(errs, err)
			continue
		}
		return dir, nil
	}
	if len(errs) == 0 {
		return "", errors.New("no private temp directory available")
	}
	return "", errors.Join(errs...)
}

func ensurePrivateDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	st, err := os.Lstat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if st.Mode().Perm() != 0o700 {
		if err := os.Chmod(dir, 0o700); err != nil {
			return err
		}
	}
	return nil
}
