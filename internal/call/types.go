package call

import (
	"context"
	"time"

	"github.com/pranavmanoj1/productivityai/internal/types"
)

// Exchanger sends one user utterance to the assistant backend and returns
// its structured reply.
type Exchanger interface {
	Send(ctx context.Context, message, token string) (*types.AIResponse, error)
}

// Confirmer persists an approved batch of proposed tasks in a single request.
type Confirmer interface {
	Confirm(ctx context.Context, token string, tasks []types.Task) (*types.ConfirmResult, error)
}

// Synthesizer fetches one synthesized MP3 clip for the given text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Player delivers one audio clip and blocks until playback completes or
// fails. Implementations must be safe to call from the playback goroutine.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// TokenSource returns the current bearer token, or "" when the user has no
// authenticated session.
type TokenSource func() string

// Timer is a cancelable scheduled task handle.
type Timer interface {
	// Stop cancels the task; it reports whether the cancel happened before firing.
	Stop() bool
}

// Clock abstracts time so timer-driven behavior (call duration, check-in)
// is testable without real sleeps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is the wall-clock Clock used outside tests.
var SystemClock Clock = realClock{}

// Events carries session callbacks toward the UI transport. Any field may
// be nil. Callbacks are invoked without the session lock held.
type Events struct {
	OnMessage       func(types.Message)
	OnProposedTasks func([]types.Task)
	OnCallState     func(active, listening bool, durationSeconds int)
	// OnCheckIn reports the live countdown in whole seconds; 0 means the
	// check-in fired or was cleared.
	OnCheckIn func(secondsLeft int)
}
