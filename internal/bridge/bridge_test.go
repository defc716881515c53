package bridge

import (
	"context"
	"testing"

	"github.com/nbryan/concierge/internal/transcript"
)

type fakeSubmitter struct {
	texts []string
}

func (f *fakeSubmitter) Submit(_ context.Context, text string) (*transcript.Turn, error) {
	f.texts = append(f.texts, text)
	return &transcript.Turn{Role: transcript.RoleAssistant, Text: "ok"}, nil
}

func TestPressLockIgnoresRepeatPresses(t *testing.T) {
	port := NewPort()
	b := New(port, &fakeSubmitter{})

	if !b.BeginCapture() {
		t.Fatal("first press should start a capture")
	}
	if b.BeginCapture() {
		t.Error("a second press during capture must be ignored")
	}
	if !b.Capturing() {
		t.Error("bridge should report an in-flight capture")
	}
	if !b.EndCapture() {
		t.Fatal("release should stop the capture")
	}
	if b.EndCapture() {
		t.Error("a second release must be ignored")
	}

	msgs := port.Drain()
	if len(msgs) != 2 {
		t.Fatalf("expected exactly start and stop, got %d messages", len(msgs))
	}
	if msgs[0].Type != MsgStartCapture || msgs[1].Type != MsgStopCapture {
		t.Errorf("unexpected message sequence: %v, %v", msgs[0].Type, msgs[1].Type)
	}
}

func TestCaptureFailedReleasesLock(t *testing.T) {
	b := New(NewPort(), &fakeSubmitter{})

	b.BeginCapture()
	b.CaptureFailed("microphone access denied")
	if b.Capturing() {
		t.Error("a failed capture must release the press lock")
	}
	if !b.BeginCapture() {
		t.Error("the next press should start a fresh capture")
	}
}

func TestOnTranscriptionSubmitsAndReleases(t *testing.T) {
	sub := &fakeSubmitter{}
	b := New(NewPort(), sub)

	b.BeginCapture()
	turn, err := b.OnTranscription(context.Background(), "add milk to my list")
	if err != nil {
		t.Fatalf("OnTranscription: %v", err)
	}
	if turn == nil {
		t.Fatal("expected a turn")
	}
	if b.Capturing() {
		t.Error("transcription delivery must release the press lock")
	}
	if len(sub.texts) != 1 || sub.texts[0] != "add milk to my list" {
		t.Errorf("submitted texts = %v", sub.texts)
	}
}

func TestPortEmitWakesWaiter(t *testing.T) {
	port := NewPort()
	port.Speak("hello")

	select {
	case <-port.Wait():
	default:
		t.Fatal("emit should signal the waiter")
	}

	msgs := port.Drain()
	if len(msgs) != 1 || msgs[0].Type != MsgSpeak || msgs[0].Text != "hello" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if len(port.Drain()) != 0 {
		t.Error("drain should empty the queue")
	}
}

func TestSpeakable(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Added task \"call mom\".", `Added task "call mom".`},
		{"**Added** your *reminder*.", "Added your reminder."},
		{"- milk\n- eggs\n- bread", "milk eggs bread"},
		{"# Done\nAll set.", "Done All set."},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Speakable(tc.in); got != tc.want {
			t.Errorf("Speakable(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
