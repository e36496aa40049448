package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/sys/unix"
)

// terminalConfirm returns a yes/no prompt when in is an interactive
// terminal, nil otherwise.
func terminalConfirm(in io.Reader) func(string) (bool, error) {
	f, ok := in.(*os.File)
	if !ok || !isTerminal(f.Fd()) {
		return nil
	}

	return confirmLiner
}

func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), ioctlReadTermios)

	return err == nil
}

func confirmLiner(question string) (bool, error) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(question)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}

		return false, fmt.Errorf("reading answer: %w", err)
	}

	return parseYes(answer), nil
}

func parseYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
