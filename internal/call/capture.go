package call

import (
	"errors"
	"sync"
)

// ErrUnsupported reports that the connected client negotiated no
// speech-recognition capability at session start.
var ErrUnsupported = errors.New("capture: speech recognition not supported")

// Capture mediates the browser's continuous speech recognition. The browser
// owns the recognizer and streams finalized utterances to the server; this
// adapter tracks the Idle/Listening state machine and drops deliveries that
// arrive after Stop, so a stopped recognizer can never inject transcripts
// into the session.
type Capture struct {
	mu        sync.Mutex
	supported bool
	listening bool
	// callbacks are bound per Start and cleared on Stop; a delivery racing
	// a Stop sees nil callbacks and is discarded.
	onFinal    func(text string)
	onNoSpeech func()
}

// NewCapture constructs an idle adapter. supported is the capability flag
// negotiated once at session start.
func NewCapture(supported bool) *Capture {
	return &Capture{supported: supported}
}

// Supported reports the negotiated capability.
func (c *Capture) Supported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supported
}

// Listening reports whether the adapter is in the Listening state.
func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Start transitions Idle -> Listening. It fails with ErrUnsupported when no
// recognition capability exists, leaving the adapter Idle. Starting while
// already Listening rebinds the callbacks.
func (c *Capture) Start(onFinal func(text string), onNoSpeech func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.supported {
		return ErrUnsupported
	}
	c.listening = true
	c.onFinal = onFinal
	c.onNoSpeech = onNoSpeech
	return nil
}

// Stop transitions Listening -> Idle and invalidates the bound callbacks.
// Stopping when already Idle is a no-op.
func (c *Capture) Stop() {
	c.mu.Lock()
	c.listening = false
	c.onFinal = nil
	c.onNoSpeech = nil
	c.mu.Unlock()
}

// Deliver hands a finalized utterance to the bound handler. Utterances
// arriving while Idle are dropped.
func (c *Capture) Deliver(text string) {
	c.mu.Lock()
	handler := c.onFinal
	listening := c.listening
	c.mu.Unlock()
	if listening && handler != nil && text != "" {
		handler(text)
	}
}

// DeliverNoSpeech reports a no-speech recognition error. Recognition stays
// active; the handler prompts the user to repeat themselves.
func (c *Capture) DeliverNoSpeech() {
	c.mu.Lock()
	handler := c.onNoSpeech
	listening := c.listening
	c.mu.Unlock()
	if listening && handler != nil {
		handler()
	}
}
