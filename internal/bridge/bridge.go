// Package bridge normalizes the two capture paths — typed text and
// push-to-talk speech — into one utterance pipeline, and owns the
// outbound message port the host drains.
package bridge

import (
	"context"
	"log"
	"sync"

	"github.com/nbryan/concierge/internal/transcript"
)

// Submitter is the single utterance entry point both modalities feed.
type Submitter interface {
	Submit(ctx context.Context, text string) (*transcript.Turn, error)
}

// Bridge converts host capture signals into utterance submissions. The
// press lock is the one piece of explicit mutual exclusion in the
// system: rapid re-taps must not issue duplicate start/stop messages.
type Bridge struct {
	mu      sync.Mutex
	pressed bool

	port   *Port
	submit Submitter
}

// New creates a bridge that emits capture messages on port and forwards
// recognized text to submit.
func New(port *Port, submit Submitter) *Bridge {
	return &Bridge{port: port, submit: submit}
}

// BeginCapture starts a push-to-talk capture. It reports false, emitting
// nothing, when a capture is already in flight.
func (b *Bridge) BeginCapture() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pressed {
		return false
	}
	b.pressed = true
	b.port.Emit(Message{Type: MsgStartCapture})
	return true
}

// EndCapture stops a push-to-talk capture. It reports false, emitting
// nothing, when no capture is in flight.
func (b *Bridge) EndCapture() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pressed {
		return false
	}
	b.pressed = false
	b.port.Emit(Message{Type: MsgStopCapture})
	return true
}

// CaptureFailed releases the press lock after a host-side failure such
// as denied microphone access. Without this a failed capture leaves the
// bridge stuck in a recording state.
func (b *Bridge) CaptureFailed(reason string) {
	b.mu.Lock()
	b.pressed = false
	b.mu.Unlock()
	log.Printf("bridge: capture failed: %s", reason)
}

// Capturing reports whether a capture is in flight.
func (b *Bridge) Capturing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pressed
}

// SubmitText is the typed-input path.
func (b *Bridge) SubmitText(ctx context.Context, text string) (*transcript.Turn, error) {
	return b.submit.Submit(ctx, text)
}

// OnTranscription is the speech path: the host delivers the transcribed
// utterance asynchronously after a capture completes. The press lock is
// released in case the host never signaled press-up.
func (b *Bridge) OnTranscription(ctx context.Context, text string) (*transcript.Turn, error) {
	b.mu.Lock()
	b.pressed = false
	b.mu.Unlock()
	return b.submit.Submit(ctx, text)
}

// Port returns the outbound message port for the host transport.
func (b *Bridge) Port() *Port { return b.port }
