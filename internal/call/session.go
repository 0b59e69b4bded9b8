package call

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pranavmanoj1/productivityai/internal/types"
)

// Fixed assistant lines. The exact wording is part of the product surface
// (the transcript and the spoken audio both carry these verbatim).
const (
	msgGreeting = "Hello! I'm your AI assistant. You can click the microphone button to start talking. I can check in with you at any time. Just let me know when you're ready."
	msgFarewell = "Call ended. Thank you for talking with me!"
	msgFallback = "I'm having trouble processing your request."
	msgCheckIn  = "I'm checking in with you now! How are you doing with your tasks?"
	msgNoTasks  = "You have no tasks scheduled for the given time period."
	msgProposed = "I've proposed some tasks based on your input. Please review and approve them."
	msgNoSpeech = "I didn't catch that. Could you please speak again?"
	msgNoVoice  = "Sorry, voice recognition isn't supported in your browser."

	msgConfirmOK   = "Tasks have been added successfully!"
	msgConfirmFail = "There was an error adding your tasks. Please try again."
	msgDiscarded   = "Tasks have been discarded. Is there anything else you'd like me to help with?"
)

// Session is the single source of truth for one conversational call: the
// transcript, the pending task proposals, and the call/listening/duration
// state. All mutation goes through its methods; asynchronous completions
// (AI replies, timer fires, transcript deliveries) re-enter here and are
// serialized behind one mutex.
type Session struct {
	exchange Exchanger
	confirm  Confirmer
	token    TokenSource
	clock    Clock
	events   Events

	capture *Capture
	queue   *PlaybackQueue
	checkin *CheckIn

	mu       sync.Mutex
	messages []types.Message
	proposed []types.Task
	active   bool
	duration int
	durTimer Timer
}

// NewSession wires a session from its collaborators. player delivers
// synthesized audio to the connected client; supported is the negotiated
// speech-recognition capability.
func NewSession(exchange Exchanger, confirm Confirmer, synth Synthesizer, player Player, token TokenSource, supported bool, clock Clock, events Events) *Session {
	if clock == nil {
		clock = SystemClock
	}
	s := &Session{
		exchange: exchange,
		confirm:  confirm,
		token:    token,
		clock:    clock,
		events:   events,
		capture:  NewCapture(supported),
		queue:    NewPlaybackQueue(synth, player),
	}
	s.checkin = NewCheckIn(clock, s.fireCheckIn, events.OnCheckIn)
	return s
}

// AddMessage appends a message with a fresh id and the current time. It
// never fails. Assistant messages are also enqueued for speech playback.
func (s *Session) AddMessage(content string, role types.Role) types.Message {
	m := types.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	if s.events.OnMessage != nil {
		s.events.OnMessage(m)
	}
	if role == types.RoleAssistant {
		s.queue.Enqueue(content)
	}
	return m
}

// Messages returns a copy of the transcript in append order.
func (s *Session) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SetProposedTasks replaces the pending proposal batch atomically. A new
// batch overwrites any batch still awaiting review.
func (s *Session) SetProposedTasks(tasks []types.Task) {
	batch := make([]types.Task, len(tasks))
	copy(batch, tasks)
	s.mu.Lock()
	s.proposed = batch
	s.mu.Unlock()
	if s.events.OnProposedTasks != nil {
		s.events.OnProposedTasks(batch)
	}
}

// ProposedTasks returns a copy of the batch pending review.
func (s *Session) ProposedTasks() []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Task, len(s.proposed))
	copy(out, s.proposed)
	return out
}

// Active reports whether a call is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Listening reports whether speech capture is running.
func (s *Session) Listening() bool { return s.capture.Listening() }

// Duration returns elapsed call seconds; 0 when no call is active.
func (s *Session) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// CheckInRemaining returns the armed check-in countdown in seconds, 0 when unarmed.
func (s *Session) CheckInRemaining() int { return s.checkin.Remaining() }

// StartCall begins a call: greets the user and starts the one-second
// duration clock. Starting an already-active call is a no-op.
func (s *Session) StartCall() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.duration = 0
	s.durTimer = s.clock.AfterFunc(time.Second, s.durationTick)
	s.mu.Unlock()

	s.emitCallState()
	s.AddMessage(msgGreeting, types.RoleAssistant)
}

// EndCall tears the call down: capture stops, the duration clock and any
// armed check-in are canceled so nothing fires into a dead session, and the
// duration resets to 0. Ending an inactive call is a no-op.
func (s *Session) EndCall() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.duration = 0
	if s.durTimer != nil {
		s.durTimer.Stop()
		s.durTimer = nil
	}
	s.mu.Unlock()

	s.capture.Stop()
	s.checkin.Cancel()
	s.emitCallState()
	s.AddMessage(msgFarewell, types.RoleAssistant)
}

// Close releases the session when the transport goes away: an active call
// is ended and the playback queue stops draining.
func (s *Session) Close() {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active {
		s.EndCall()
	}
	s.queue.Close()
}

// StartListening starts speech capture. Without the capability it surfaces
// the fixed unsupported notice once and the call continues text-only.
func (s *Session) StartListening() error {
	if !s.Active() {
		return nil
	}
	err := s.capture.Start(s.handleTranscript, s.handleNoSpeech)
	if err != nil {
		s.AddMessage(msgNoVoice, types.RoleAssistant)
		return err
	}
	s.emitCallState()
	return nil
}

// StopListening stops speech capture; idempotent.
func (s *Session) StopListening() {
	s.capture.Stop()
	s.emitCallState()
}

// DeliverTranscript feeds a finalized utterance from the client recognizer.
func (s *Session) DeliverTranscript(text string) { s.capture.Deliver(text) }

// DeliverNoSpeech feeds a no-speech recognition error from the client.
func (s *Session) DeliverNoSpeech() { s.capture.DeliverNoSpeech() }

// HandleUserInput records text as a user message and runs one exchange with
// the assistant backend, applying the reply effects in order: answer, task
// listing, proposal batch, check-in arm. Every failure is converted to the
// fixed fallback assistant message; nothing is retried.
func (s *Session) HandleUserInput(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.AddMessage(text, types.RoleUser)

	tok := s.token()
	if tok == "" {
		s.AddMessage(msgFallback, types.RoleAssistant)
		return
	}

	reply, err := s.exchange.Send(ctx, text, tok)
	if err != nil {
		s.AddMessage(msgFallback, types.RoleAssistant)
		return
	}

	s.AddMessage(reply.FreeformAnswer, types.RoleAssistant)

	if reply.TasksFetched != nil {
		if len(reply.TasksFetched) > 0 {
			titles := make([]string, len(reply.TasksFetched))
			for i, t := range reply.TasksFetched {
				titles[i] = t.Title
			}
			s.AddMessage("Here are your tasks:\n"+strings.Join(titles, "\n"), types.RoleAssistant)
		} else {
			s.AddMessage(msgNoTasks, types.RoleAssistant)
		}
	}

	if len(reply.ProposedTasks) > 0 {
		s.SetProposedTasks(reply.ProposedTasks)
		s.AddMessage(msgProposed, types.RoleAssistant)
	}

	if reply.CheckInDelay > 0 {
		s.checkin.Schedule(time.Duration(reply.CheckInDelay) * time.Millisecond)
	}
}

// handleTranscript is the capture callback for finalized utterances.
func (s *Session) handleTranscript(text string) {
	s.HandleUserInput(context.Background(), text)
}

// handleNoSpeech prompts the user to repeat; recognition stays active.
func (s *Session) handleNoSpeech() {
	s.AddMessage(msgNoSpeech, types.RoleAssistant)
}

// fireCheckIn announces the reminder exactly once per arm.
func (s *Session) fireCheckIn() {
	s.AddMessage(msgCheckIn, types.RoleAssistant)
}

// durationTick advances the call clock once per second while active.
func (s *Session) durationTick() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.duration++
	s.durTimer = s.clock.AfterFunc(time.Second, s.durationTick)
	s.mu.Unlock()
	s.emitCallState()
}

func (s *Session) emitCallState() {
	if s.events.OnCallState == nil {
		return
	}
	s.mu.Lock()
	active, duration := s.active, s.duration
	s.mu.Unlock()
	s.events.OnCallState(active, s.capture.Listening(), duration)
}
