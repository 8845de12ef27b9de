package companion

import (
	"context"
	"errors"
	"time"

	"github.com/nibzard/taskboard-go/internal/protocol"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

// Default watch periods.
const (
	DefaultSyncEvery = time.Hour
	DefaultListEvery = time.Minute
	DefaultWatchPoll = 100 * time.Millisecond
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// SyncEvery is the period between clock syncs.
	SyncEvery time.Duration
	// ListEvery is the period between list refreshes.
	ListEvery time.Duration
	// Poll is how often the inbound stream is drained.
	Poll time.Duration
	// OnChange receives the mirrored list after the connect and after
	// every batch of board lines.
	OnChange func([]tasks.Task)
}

// Watch connects once and then keeps the mirror following the board until
// ctx is done. Board notices are folded in as they arrive. The clock is
// resent every SyncEvery and the list is requested every ListEvery; the
// requested list is applied when it arrives rather than waited for.
// Watch returns nil when ctx ends and ErrLinkClosed when the link does.
func (c *Client) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.SyncEvery <= 0 {
		opts.SyncEvery = DefaultSyncEvery
	}
	if opts.ListEvery <= 0 {
		opts.ListEvery = DefaultListEvery
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultWatchPoll
	}
	notify := func() {
		if opts.OnChange != nil {
			opts.OnChange(c.Tasks())
		}
	}

	if _, err := c.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	notify()

	now := c.opts.Now()
	nextSync := now.Add(opts.SyncEvery)
	nextList := now.Add(opts.ListEvery)
	c.logger.Info("watching board", "sync_every", opts.SyncEvery, "list_every", opts.ListEvery)

	ticker := time.NewTicker(opts.Poll)
	defer ticker.Stop()
	for {
		n, err := c.Drain()
		if n > 0 {
			notify()
		}
		if errors.Is(err, ErrLinkClosed) {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		now = c.opts.Now()
		if !now.Before(nextSync) {
			if err := c.SyncTime(); err != nil {
				return err
			}
			nextSync = now.Add(opts.SyncEvery)
		}
		if !now.Before(nextList) {
			if err := c.send(protocol.NewListTasks()); err != nil {
				return err
			}
			nextList = now.Add(opts.ListEvery)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
