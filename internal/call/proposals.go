package call

import (
	"context"
	"encoding/base64"
	"errors"
	"log"

	"github.com/pranavmanoj1/productivityai/internal/types"
)

// ErrNoPendingTasks reports an approve/discard with nothing awaiting review.
var ErrNoPendingTasks = errors.New("call: no proposed tasks pending")

// ErrUnauthenticated reports a missing bearer token on an operation that
// requires one. There is no automatic re-authentication.
var ErrUnauthenticated = errors.New("call: not authenticated")

// ApproveTasks sends the whole pending batch to the task store in one
// request; approval is all-or-nothing. On success the batch is cleared and
// a confirmation is announced; when the backend returned a confirmation
// clip it plays directly, bypassing the synthesis path. On failure the
// batch stays pending for another attempt and an error notice is announced.
func (s *Session) ApproveTasks(ctx context.Context) error {
	batch := s.ProposedTasks()
	if len(batch) == 0 {
		return ErrNoPendingTasks
	}

	tok := s.token()
	if tok == "" {
		s.AddMessage(msgConfirmFail, types.RoleAssistant)
		return ErrUnauthenticated
	}

	res, err := s.confirm.Confirm(ctx, tok, batch)
	if err != nil {
		s.AddMessage(msgConfirmFail, types.RoleAssistant)
		return err
	}

	if res.TTSAudio != "" {
		if audio, decErr := base64.StdEncoding.DecodeString(res.TTSAudio); decErr == nil {
			go func() {
				if playErr := s.queue.player.Play(context.Background(), audio); playErr != nil {
					log.Printf("call: confirmation audio playback failed: %v", playErr)
				}
			}()
		} else {
			log.Printf("call: bad confirmation audio encoding: %v", decErr)
		}
	}

	s.SetProposedTasks(nil)
	s.AddMessage(msgConfirmOK, types.RoleAssistant)
	return nil
}

// DiscardTasks clears the pending batch locally; nothing is persisted and
// no network call is made.
func (s *Session) DiscardTasks() error {
	if len(s.ProposedTasks()) == 0 {
		return ErrNoPendingTasks
	}
	s.SetProposedTasks(nil)
	s.AddMessage(msgDiscarded, types.RoleAssistant)
	return nil
}
