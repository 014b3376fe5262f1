// Package platform holds the terminal stand-ins for the device services a
// focus commitment talks to: the distraction blocker, the completion
// notification and the purchase prompt.
package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustank/internal/commitment"
	"github.com/dmitrijs2005/focustank/internal/logging"
)

// LogBlocker records block state in the log. It is always authorized.
type LogBlocker struct {
	log     logging.Logger
	mu      sync.Mutex
	enabled bool
}

func NewLogBlocker(l logging.Logger) *LogBlocker {
	return &LogBlocker{log: l.With("module", "blocker")}
}

var _ commitment.Blocker = (*LogBlocker)(nil)

func (b *LogBlocker) Enable(ctx context.Context) error {
	b.mu.Lock()
	b.enabled = true
	b.mu.Unlock()
	b.log.Info(ctx, "distraction blocking on")
	return nil
}

func (b *LogBlocker) Disable(ctx context.Context) error {
	b.mu.Lock()
	b.enabled = false
	b.mu.Unlock()
	b.log.Info(ctx, "distraction blocking off")
	return nil
}

func (b *LogBlocker) IsAuthorized(context.Context) bool { return true }

func (b *LogBlocker) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// TimerNotifier prints a line to out when the completion time is reached.
type TimerNotifier struct {
	out io.Writer

	mu    sync.Mutex
	timer *time.Timer
}

func NewTimerNotifier(out io.Writer) *TimerNotifier {
	return &TimerNotifier{out: out}
}

var _ commitment.Notifier = (*TimerNotifier)(nil)

func (n *TimerNotifier) ScheduleCompletion(_ context.Context, kind commitment.Kind, at time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(time.Until(at), func() {
		fmt.Fprintf(n.out, "\n[notification] %s commitment is complete, your reward is waiting\n", kind)
	})
	return nil
}

func (n *TimerNotifier) CancelCompletion(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	return nil
}

// Pending reports whether a notification is scheduled.
func (n *TimerNotifier) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.timer != nil
}

// ErrPurchaseDeclined is returned when the user does not confirm.
var ErrPurchaseDeclined = errors.New("purchase declined")

// PromptPurchaser asks for confirmation on the terminal.
type PromptPurchaser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptPurchaser reads answers from in, which is usually the reader the
// REPL itself consumes so buffered input is not lost between the two.
func NewPromptPurchaser(in *bufio.Reader, out io.Writer) *PromptPurchaser {
	return &PromptPurchaser{in: in, out: out}
}

func (p *PromptPurchaser) Purchase(_ context.Context, product string) error {
	fmt.Fprintf(p.out, "Buy %s to finish now? [y/N]: ", product)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return ErrPurchaseDeclined
	}
}
