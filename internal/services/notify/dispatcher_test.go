package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureMailer records sent messages for assertions.
type captureMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (m *captureMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *clock.Mock, *captureMailer) {
	t.Helper()
	mock := clock.NewMock()
	mailer := &captureMailer{}
	return NewDispatcher(2*time.Minute, mock, mailer), mock, mailer
}

func TestNotify_SingleFileFlushesAfterWindow(t *testing.T) {
	d, mock, mailer := newTestDispatcher(t)

	d.Notify(Recipient{Email: "analyst@example.com", Name: "Ada"}, []string{"report.pdf"})

	// Just before the window: nothing sent yet.
	mock.Add(2*time.Minute - time.Second)
	assert.Empty(t, mailer.messages())

	mock.Add(time.Second)
	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "analyst@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].HTML, "report.pdf")
	assert.Contains(t, msgs[0].HTML, "Hello Ada")

	// Entry is gone after the flush.
	assert.Nil(t, d.PendingFor("analyst@example.com"))
}

func TestNotify_BurstCoalescesIntoOneEmail(t *testing.T) {
	d, mock, mailer := newTestDispatcher(t)
	rcpt := Recipient{Email: "analyst@example.com"}

	d.Notify(rcpt, []string{"a.pdf"})
	mock.Add(90 * time.Second)
	d.Notify(rcpt, []string{"b.pdf"})
	mock.Add(90 * time.Second)
	d.Notify(rcpt, []string{"c.pdf", "d.pdf"})

	// Each file re-armed the timer, so nothing has been sent yet even though
	// more than one full window has passed since the first file.
	assert.Empty(t, mailer.messages())
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}, d.PendingFor(rcpt.Email))

	mock.Add(2 * time.Minute)
	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Subject, "4")

	// Arrival order across contributing calls.
	body := msgs[0].HTML
	assert.Less(t, strings.Index(body, "a.pdf"), strings.Index(body, "b.pdf"))
	assert.Less(t, strings.Index(body, "b.pdf"), strings.Index(body, "c.pdf"))
	assert.Less(t, strings.Index(body, "c.pdf"), strings.Index(body, "d.pdf"))
}

func TestNotify_StaleTimerFlushDoesNotSendEarly(t *testing.T) {
	mailer := &captureMailer{}
	d := NewDispatcher(DefaultQuietWindow, clock.NewMock(), mailer)
	rcpt := Recipient{Email: "analyst@example.com"}

	d.Notify(rcpt, []string{"a.pdf"})
	d.Notify(rcpt, []string{"b.pdf"})

	// A timer that fired just before the second Notify re-armed the window
	// reaches flush carrying the old generation; it must leave the batch
	// alone instead of sending early.
	d.flush(rcpt.Email, 0)

	assert.Empty(t, mailer.messages())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, d.PendingFor(rcpt.Email))
}

func TestNotify_RecipientsAreIsolated(t *testing.T) {
	d, mock, mailer := newTestDispatcher(t)

	d.Notify(Recipient{Email: "a@example.com"}, []string{"for-a.pdf"})
	d.Notify(Recipient{Email: "b@example.com"}, []string{"for-b.pdf"})

	mock.Add(2 * time.Minute)
	msgs := mailer.messages()
	require.Len(t, msgs, 2)

	byTo := map[string]Message{}
	for _, m := range msgs {
		byTo[m.To] = m
	}
	assert.Contains(t, byTo["a@example.com"].HTML, "for-a.pdf")
	assert.NotContains(t, byTo["a@example.com"].HTML, "for-b.pdf")
	assert.Contains(t, byTo["b@example.com"].HTML, "for-b.pdf")
	assert.NotContains(t, byTo["b@example.com"].HTML, "for-a.pdf")
}

func TestNotify_NewBatchAfterFlush(t *testing.T) {
	d, mock, mailer := newTestDispatcher(t)
	rcpt := Recipient{Email: "analyst@example.com"}

	d.Notify(rcpt, []string{"first.pdf"})
	mock.Add(2 * time.Minute)
	require.Len(t, mailer.messages(), 1)

	d.Notify(rcpt, []string{"second.pdf"})
	mock.Add(2 * time.Minute)

	msgs := mailer.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].HTML, "second.pdf")
	assert.NotContains(t, msgs[1].HTML, "first.pdf")
}

func TestNotify_CcIsCarried(t *testing.T) {
	d, mock, mailer := newTestDispatcher(t)

	d.Notify(Recipient{Email: "primary@example.com", Cc: "secondary@example.com"}, []string{"x.csv"})
	mock.Add(2 * time.Minute)

	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "secondary@example.com", msgs[0].Cc)
}

func TestNotify_ConcurrentSameRecipientLosesNothing(t *testing.T) {
	d, mock, mailer := newTestDispatcher(t)
	rcpt := Recipient{Email: "analyst@example.com"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			d.Notify(rcpt, []string{fileName(n)})
		}(i)
	}
	wg.Wait()

	require.Len(t, d.PendingFor(rcpt.Email), 20)

	mock.Add(2 * time.Minute)
	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	for i := 0; i < 20; i++ {
		assert.Contains(t, msgs[0].HTML, fileName(i))
	}
}

func TestNotify_IgnoresEmptyInput(t *testing.T) {
	d, mock, mailer := newTestDispatcher(t)

	d.Notify(Recipient{Email: "analyst@example.com"}, nil)
	d.Notify(Recipient{}, []string{"orphan.pdf"})

	mock.Add(2 * time.Minute)
	assert.Empty(t, mailer.messages())
}

func fileName(n int) string {
	return "file-" + string(rune('a'+n%26)) + ".pdf"
}
