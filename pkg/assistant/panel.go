// Package assistant simulates the research assistant panel: a transcript
// of prompts and canned replies delivered after a delay.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/syllabus/pkg/schedule"
)

// DefaultDelay is how long a reply takes to arrive.
const DefaultDelay = 1500 * time.Millisecond

// ErrorReply is appended when the responder fails.
const ErrorReply = "Sorry, I encountered an error. Please try again."

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Responder produces the reply to a prompt.
type Responder func(ctx context.Context, prompt string) (string, error)

// CannedResponder returns the fixed demonstration reply.
func CannedResponder(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("I understand you're asking about: %q. Here's some helpful information that you can use in your notes:\n\n"+
		"• This is a simulated response for demonstration\n"+
		"• In a real implementation, this would connect to a language model API\n"+
		"• You can insert this text directly into your note\n"+
		"• The response would be contextually relevant to your query", prompt), nil
}

// Option configures a Panel.
type Option func(*Panel)

// WithDelay sets the reply delay.
func WithDelay(d time.Duration) Option {
	return func(p *Panel) { p.delay = d }
}

// WithResponder replaces the canned responder.
func WithResponder(r Responder) Option {
	return func(p *Panel) {
		if r != nil {
			p.responder = r
		}
	}
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) {
		if now != nil {
			p.now = now
		}
	}
}

// WithOnReply registers a callback invoked after each reply is appended.
func WithOnReply(fn func(Message)) Option {
	return func(p *Panel) { p.onReply = fn }
}

// Panel holds a transcript and at most one pending reply.
type Panel struct {
	delay     time.Duration
	responder Responder
	now       func() time.Time
	onReply   func(Message)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	messages []Message
	pending  *schedule.Task
	seq      uint64
	closed   bool
}

// NewPanel opens a panel. Close releases its pending reply.
func NewPanel(opts ...Option) *Panel {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Panel{
		delay:     DefaultDelay,
		responder: CannedResponder,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ask appends prompt to the transcript and schedules a reply. Blank
// prompts, prompts sent while a reply is pending, and prompts sent after
// Close are ignored and report false.
func (p *Panel) Ask(prompt string) (Message, bool) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Message{}, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.pending != nil {
		return Message{}, false
	}

	msg := Message{ID: uuid.NewString(), Role: RoleUser, Content: prompt, Timestamp: p.now()}
	p.messages = append(p.messages, msg)

	p.seq++
	seq := p.seq
	p.pending = schedule.After(p.ctx, p.delay, func(ctx context.Context) {
		p.reply(ctx, seq, prompt)
	})
	return msg, true
}

func (p *Panel) reply(ctx context.Context, seq uint64, prompt string) {
	content, err := p.responder(ctx, prompt)
	if err != nil {
		content = ErrorReply
	}

	p.mu.Lock()
	// Replies that land after Close are dropped.
	if p.closed || ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	msg := Message{ID: uuid.NewString(), Role: RoleAssistant, Content: content, Timestamp: p.now()}
	p.messages = append(p.messages, msg)
	if p.seq == seq {
		p.pending = nil
	}
	onReply := p.onReply
	p.mu.Unlock()

	if onReply != nil {
		onReply(msg)
	}
}

// Pending reports whether a reply is on its way.
func (p *Panel) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Messages returns a copy of the transcript.
func (p *Panel) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// Wait blocks until the pending reply (if any) has been delivered or ctx ends.
func (p *Panel) Wait(ctx context.Context) error {
	p.mu.Lock()
	task := p.pending
	p.mu.Unlock()

	if task == nil {
		return nil
	}
	select {
	case <-task.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any pending reply and waits for it to unwind.
// Later calls to Ask are ignored.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	task := p.pending
	p.pending = nil
	p.mu.Unlock()

	p.cancel()
	if task != nil {
		task.Stop()
	}
}
