package assistantnode

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

func LoadOrCreateSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	locale string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	s, err := loadOrCreateSession(ctx, store, in.SessionID, locale, in.Now)
	if err != nil {
		return nil, err
	}
	in.Session = s
	return in, nil
}

func loadOrCreateSession(
	ctx context.Context,
	store statex.Store,
	sessionID string,
	locale string,
	now time.Time,
) (*statex.Session, error) {
	s, err := store.Load(ctx, sessionID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, statex.ErrStateNotFound) {
		return nil, err
	}
	return statex.NewSession(sessionID, locale, now), nil
}
