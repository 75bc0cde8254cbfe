package events

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// WatchCommand is the event bus listener started by Command.
const WatchCommand = "lipc-wait-event"

// Watch reads event lines from r and calls fn for each parsed event until r
// reaches EOF or ctx is done. Blank lines are skipped. A blocked read is not
// interrupted by ctx; close r to stop it.
func Watch(ctx context.Context, source string, r io.Reader, fn Callback) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := ParseLine(source, scanner.Text())
		if errors.Is(err, ErrEmptyLine) {
			continue
		}
		if err != nil {
			return err
		}

		fn(ev)
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return ctx.Err()
}

// Command returns the listener process for names on source. It runs in
// monitor mode and prints one line per event until killed.
func Command(ctx context.Context, source string, names ...string) *exec.Cmd {
	return exec.CommandContext(ctx, WatchCommand, "-m", source, strings.Join(names, ","))
}
