package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aylalah/ag-rms-sub000/internal/telemetry"
	"github.com/benbjohnson/clock"
)

// DefaultQuietWindow is the debounce interval before a pending batch is
// flushed as one email.
const DefaultQuietWindow = 120 * time.Second

// Recipient identifies where an upload digest goes. Email is the coalescing
// key; Cc, when set, receives a copy of the digest.
type Recipient struct {
	Email string
	Name  string
	Cc    string
}

// Dispatcher coalesces file-upload notifications per recipient.
//
// A drag-and-drop burst of uploads to the same recipient produces one email:
// the first file arms a timer for the quiet window, every further file
// appends and re-arms it for the full window, and when the window elapses
// with no new files the accumulated batch is mailed and discarded.
//
// State is process-wide and in-memory only; a restart drops any unflushed
// batch. That is a documented limitation, not a bug.
type Dispatcher struct {
	window time.Duration
	clock  clock.Clock
	mailer Mailer

	mu      sync.Mutex
	pending map[string]*pendingBatch
}

type pendingBatch struct {
	recipient Recipient
	files     []string
	timer     *clock.Timer

	// gen increments every time the window re-arms. A flush fired for an
	// older generation lost the race against an append and must not send.
	gen int
}

// NewDispatcher creates a dispatcher flushing after the given quiet window.
// A zero window falls back to DefaultQuietWindow. The clock is injectable so
// tests can drive synthetic time instead of waiting out real windows.
func NewDispatcher(window time.Duration, clk clock.Clock, mailer Mailer) *Dispatcher {
	if window <= 0 {
		window = DefaultQuietWindow
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Dispatcher{
		window:  window,
		clock:   clk,
		mailer:  mailer,
		pending: make(map[string]*pendingBatch),
	}
}

// Notify feeds successfully stored files into the recipient's pending batch.
//
// The read-append-rearm step is a single critical section per recipient so
// two near-simultaneous uploads can neither lose each other's files nor
// leave a stray live timer. Different recipients proceed independently.
func (d *Dispatcher) Notify(recipient Recipient, files []string) {
	if len(files) == 0 || recipient.Email == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	email := recipient.Email
	batch, ok := d.pending[email]
	if !ok {
		batch = &pendingBatch{recipient: recipient, files: append([]string(nil), files...)}
		batch.timer = d.clock.AfterFunc(d.window, func() { d.flush(email, 0) })
		d.pending[email] = batch
		return
	}

	batch.files = append(batch.files, files...)

	// Full window again: the email should describe the complete burst. The
	// old timer may already have fired and be waiting on the mutex; bumping
	// the generation strands that flush, and the fresh timer carries the
	// current one.
	batch.gen++
	gen := batch.gen
	batch.timer.Stop()
	batch.timer = d.clock.AfterFunc(d.window, func() { d.flush(email, gen) })
}

// PendingFor reports the files currently batched for a recipient.
func (d *Dispatcher) PendingFor(email string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	batch, ok := d.pending[email]
	if !ok {
		return nil
	}
	return append([]string(nil), batch.files...)
}

// Close flushes every pending batch immediately so a graceful shutdown does
// not silently drop notifications that were mid-window.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	batches := make([]*pendingBatch, 0, len(d.pending))
	for email, batch := range d.pending {
		batch.timer.Stop()
		batches = append(batches, batch)
		delete(d.pending, email)
	}
	d.mu.Unlock()

	for _, batch := range batches {
		d.send(batch)
	}
}

// flush mails the accumulated batch and deletes the entry. Runs on the
// timer goroutine; the send happens outside the critical section so a slow
// relay cannot block concurrent Notify calls. A stale generation means an
// append re-armed the window after this timer fired, so the batch stays put
// for the newer timer.
func (d *Dispatcher) flush(email string, gen int) {
	d.mu.Lock()
	batch, ok := d.pending[email]
	if ok && batch.gen == gen {
		delete(d.pending, email)
	} else {
		ok = false
	}
	d.mu.Unlock()
	if !ok {
		return
	}

	d.send(batch)
}

// send mails one settled batch.
func (d *Dispatcher) send(batch *pendingBatch) {
	msg := Message{
		To:      batch.recipient.Email,
		Cc:      batch.recipient.Cc,
		Subject: fmt.Sprintf("%d new file(s) uploaded", len(batch.files)),
		HTML:    digestBody(batch.recipient.Name, batch.files),
	}
	if err := d.mailer.Send(context.Background(), msg); err != nil {
		log.Printf("notify: failed to send upload digest to %s: %v", batch.recipient.Email, err)
		return
	}
	telemetry.EmailsSentTotal.WithLabelValues("upload_digest").Inc()
}

// digestBody lists the batched files in arrival order.
func digestBody(name string, files []string) string {
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "<p>Hello %s,</p>", name)
	}
	b.WriteString("<p>The following files have been uploaded:</p><ul>")
	for _, f := range files {
		fmt.Fprintf(&b, "<li>%s</li>", f)
	}
	b.WriteString("</ul>")
	return b.String()
}
