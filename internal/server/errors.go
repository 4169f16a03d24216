package server

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/datadeck/datadeck-server-go/internal/catalog"
	"github.com/datadeck/datadeck-server-go/internal/game"
	"github.com/datadeck/datadeck-server-go/internal/game/cards"
	"github.com/datadeck/datadeck-server-go/internal/game/deck"
	"github.com/datadeck/datadeck-server-go/internal/repository"
)

// errBadRequest marks malformed client messages.
var errBadRequest = errors.New("bad request")

// CodeFromError maps an engine or session error to a gRPC status code.
func CodeFromError(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return st.Code()
	}

	var validation *cards.ValidationError
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrCardNotFound),
		errors.Is(err, game.ErrReplayNotFound),
		errors.Is(err, catalog.ErrUnknownDeck),
		errors.Is(err, repository.ErrDeckNotFound):
		return codes.NotFound
	case errors.Is(err, cards.ErrSpellConsumed),
		errors.Is(err, cards.ErrExhaustedArtifact),
		errors.Is(err, deck.ErrEmptyDeck),
		errors.Is(err, deck.ErrDeckFull),
		errors.Is(err, game.ErrNotOnBoard),
		errors.Is(err, game.ErrReplaysDisabled):
		return codes.FailedPrecondition
	case errors.Is(err, game.ErrSessionLimit):
		return codes.ResourceExhausted
	case errors.Is(err, game.ErrReplayCorrupt):
		return codes.DataLoss
	case errors.As(err, &validation),
		errors.Is(err, cards.ErrInvalidTarget),
		errors.Is(err, cards.ErrInvalidTargetCount),
		errors.Is(err, cards.ErrUnexpectedTargets),
		errors.Is(err, cards.ErrInvalidEffectType),
		errors.Is(err, cards.ErrInvalidRarity),
		errors.Is(err, cards.ErrInvalidTargetPolicy),
		errors.Is(err, game.ErrWrongKind),
		errors.Is(err, game.ErrSelfAttack),
		errors.Is(err, deck.ErrNotACard),
		errors.Is(err, catalog.ErrUnknownType),
		errors.Is(err, errBadRequest):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// StatusFromError converts err into a gRPC status carrying the mapped code.
func StatusFromError(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return st
	}
	return status.New(CodeFromError(err), err.Error())
}
