package bridge

import "sync"

// MessageType identifies an outbound host message.
type MessageType string

const (
	MsgSpeak                MessageType = "speak"
	MsgScheduleNotification MessageType = "schedule_notification"
	MsgStartCapture         MessageType = "start_capture"
	MsgStopCapture          MessageType = "stop_capture"
)

// Message is an opaque instruction for the host: the core emits them and
// a host transport drains them. The core never implements capture,
// synthesis, or notification delivery itself.
type Message struct {
	Type MessageType `json:"type"`

	// MsgSpeak
	Text string `json:"text,omitempty"`

	// MsgScheduleNotification
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Body    string `json:"body,omitempty"`
	WhenISO string `json:"when_iso,omitempty"`
}

// Port is the explicit outbound message queue between the core and its
// host. Emit never blocks; hosts drain at their own pace.
type Port struct {
	mu     sync.Mutex
	queue  []Message
	signal chan struct{}
}

// NewPort creates an empty port.
func NewPort() *Port {
	return &Port{signal: make(chan struct{}, 1)}
}

// Emit appends a message to the queue and wakes any waiting drainer.
func (p *Port) Emit(msg Message) {
	p.mu.Lock()
	p.queue = append(p.queue, msg)
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Drain returns and clears all queued messages.
func (p *Port) Drain() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.queue
	p.queue = nil
	return out
}

// Wait returns a channel that receives after new messages arrive.
func (p *Port) Wait() <-chan struct{} { return p.signal }

// Speak asks the host to synthesize the given text.
func (p *Port) Speak(text string) {
	p.Emit(Message{Type: MsgSpeak, Text: text})
}

// ScheduleNotification asks the host to schedule a local notification.
func (p *Port) ScheduleNotification(id, title, body, whenISO string) {
	p.Emit(Message{Type: MsgScheduleNotification, ID: id, Title: title, Body: body, WhenISO: whenISO})
}
