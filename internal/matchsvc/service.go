// Package matchsvc is the façade that coordinates the rules engine and the
// store: it holds no scoring logic of its own, only the sequencing between
// "fetch the match", "apply the rule", and "persist if it just finished".
package matchsvc

import (
	"context"
	"fmt"

	"tennis-score-go/internal/apperrors"
	"tennis-score-go/internal/scoreengine"
	"tennis-score-go/internal/store"
	"tennis-score-go/internal/tracing"
)

// Service is the entry point used by the HTTP layer (and tests) to operate
// on matches.
type Service struct {
	store *store.Store
	cfg   scoreengine.RulesConfig
}

func New(st *store.Store, cfg scoreengine.RulesConfig) *Service {
	return &Service{store: st, cfg: cfg}
}

// CreateMatch starts a new match between the two named players.
func (svc *Service) CreateMatch(ctx context.Context, playerOneName, playerTwoName string) (MatchView, error) {
	_, span := tracing.StartSpan(ctx, "matchsvc.CreateMatch")
	defer span.End()

	m, err := svc.store.Create(playerOneName, playerTwoName)
	if err != nil {
		return MatchView{Error: err.Error()}, err
	}
	return fromActive(m), nil
}

// UpdateScore awards a point to side on the given match. If the match is
// unknown it returns apperrors.ErrUnknownMatch; if it is already persisted
// (or becomes terminal as a result of this point), the returned view
// reflects the final state and carries apperrors.ErrAlreadyCompleted only
// when the award itself was rejected, not when this call is the one that
// just won the match.
func (svc *Service) UpdateScore(ctx context.Context, matchUUID string, side scoreengine.Side) (MatchView, error) {
	_, span := tracing.StartSpan(ctx, "matchsvc.UpdateScore")
	defer span.End()

	var view MatchView
	var opErr error

	found, err := svc.store.WithActiveLocked(matchUUID, func(m *scoreengine.Match) error {
		if m.IsTerminal() {
			// A prior SaveCompleted attempt must have failed; retry it
			// idempotently before reporting the match as already decided.
			view, opErr = svc.completeAndView(m)
			if opErr == nil {
				opErr = apperrors.ErrAlreadyCompleted
			}
			return nil
		}

		outcome := scoreengine.AwardPoint(m, side, svc.cfg)
		switch outcome.Kind {
		case scoreengine.Rejected:
			view = fromActive(m)
			if outcome.Reason == scoreengine.ReasonUnknownSide {
				opErr = apperrors.ErrInvalidSide
			} else {
				opErr = apperrors.ErrAlreadyCompleted
			}
			view.Error = opErr.Error()
			return nil
		case scoreengine.MatchWon:
			if verr := scoreengine.ValidateInvariants(m); verr != nil {
				panic(fmt.Sprintf("matchsvc: invariant violated after MatchWon: %v", verr))
			}
			view, opErr = svc.completeAndView(m)
			return nil
		default: // Continued, SetWon
			if verr := scoreengine.ValidateInvariants(m); verr != nil {
				panic(fmt.Sprintf("matchsvc: invariant violated: %v", verr))
			}
			view = fromActive(m)
			return nil
		}
	})
	if err != nil {
		return MatchView{}, err
	}
	if found {
		return view, opErr
	}

	return svc.viewForInactiveMatch(matchUUID, apperrors.ErrAlreadyCompleted)
}

// completeAndView persists m (idempotently) and returns its final view. A
// storage failure leaves m active for a later retry and is reported as
// ErrStorageFailure rather than silently dropped.
func (svc *Service) completeAndView(m *scoreengine.Match) (MatchView, error) {
	p, err := svc.store.SaveCompleted(m)
	if err != nil {
		v := fromActive(m)
		v.Error = apperrors.ErrStorageFailure.Error()
		return v, apperrors.ErrStorageFailure
	}
	return fromPersisted(p), nil
}

// GetMatch returns the current view of a match, active or persisted. ok is
// false if no match with that uuid exists anywhere.
func (svc *Service) GetMatch(ctx context.Context, matchUUID string) (view MatchView, ok bool, err error) {
	_, span := tracing.StartSpan(ctx, "matchsvc.GetMatch")
	defer span.End()

	if m, found := svc.store.PeekActive(matchUUID); found {
		return fromActive(m), true, nil
	}
	p, found, err := svc.store.GetPersisted(matchUUID)
	if err != nil {
		return MatchView{}, false, err
	}
	if !found {
		return MatchView{}, false, nil
	}
	return fromPersisted(p), true, nil
}

// Reset clears an in-progress match back to its unplayed state. Persisted
// (completed) matches can never be reset; attempting to returns the
// persisted view plus apperrors.ErrNotResettable.
func (svc *Service) Reset(ctx context.Context, matchUUID string) (MatchView, error) {
	_, span := tracing.StartSpan(ctx, "matchsvc.Reset")
	defer span.End()

	var view MatchView
	var opErr error

	found, err := svc.store.WithActiveLocked(matchUUID, func(m *scoreengine.Match) error {
		if rerr := scoreengine.Reset(m); rerr != nil {
			view = fromActive(m)
			opErr = apperrors.ErrNotResettable
			view.Error = opErr.Error()
			return nil
		}
		view = fromActive(m)
		return nil
	})
	if err != nil {
		return MatchView{}, err
	}
	if found {
		return view, opErr
	}

	return svc.viewForInactiveMatch(matchUUID, apperrors.ErrNotResettable)
}

// viewForInactiveMatch handles the "uuid isn't in the active set" case
// shared by UpdateScore and Reset: it's either persisted (terminal, so
// return persistedErr) or unknown entirely.
func (svc *Service) viewForInactiveMatch(matchUUID string, persistedErr error) (MatchView, error) {
	p, found, err := svc.store.GetPersisted(matchUUID)
	if err != nil {
		return MatchView{Error: apperrors.ErrStorageFailure.Error()}, apperrors.ErrStorageFailure
	}
	if found {
		v := fromPersisted(p)
		v.Error = persistedErr.Error()
		return v, persistedErr
	}
	return MatchView{Error: apperrors.ErrUnknownMatch.Error()}, apperrors.ErrUnknownMatch
}

// ListMatches returns a page of the unified active+persisted match listing.
func (svc *Service) ListMatches(ctx context.Context, page, perPage int, filter string) ([]MatchView, int, error) {
	_, span := tracing.StartSpan(ctx, "matchsvc.ListMatches")
	defer span.End()

	items, totalPages, err := svc.store.List(page, perPage, filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]MatchView, 0, len(items))
	for _, it := range items {
		if it.Completed {
			views = append(views, fromPersisted(it.Persisted))
		} else {
			views = append(views, fromActive(it.Active))
		}
	}
	return views, totalPages, nil
}
