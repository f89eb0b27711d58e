package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeHoldStore struct {
	held bool
	err  error
}

func (f *fakeHoldStore) IsHeld(_ context.Context, _ string, _ HoldTarget, _ string) (bool, error) {
	return f.held, f.err
}

func (f *fakeHoldStore) ApplyHold(_ context.Context, hold LegalHold) (LegalHold, error) {
	return hold, nil
}

func (f *fakeHoldStore) LiftHold(_ context.Context, _, holdID, liftedBy string) (LegalHold, error) {
	return LegalHold{HoldID: holdID, LiftedBy: liftedBy}, nil
}

func TestBlockDeletionIfHeld_AllowsWhenNoActiveHold(t *testing.T) {
	err := BlockDeletionIfHeld(context.Background(), &fakeHoldStore{held: false}, "tenant-1", HoldTargetDocument, "doc-1")
	assert.NoError(t, err)
}

func TestBlockDeletionIfHeld_BlocksWhenHoldActive(t *testing.T) {
	err := BlockDeletionIfHeld(context.Background(), &fakeHoldStore{held: true}, "tenant-1", HoldTargetDocument, "doc-1")
	assert.Error(t, err)
}

func TestBlockDeletionIfHeld_FailsClosedOnLookupError(t *testing.T) {
	err := BlockDeletionIfHeld(context.Background(), &fakeHoldStore{err: errors.New("db down")}, "tenant-1", HoldTargetDocument, "doc-1")
	assert.Error(t, err)
}

func TestHashReason_ReturnsHashAndLengthWithoutRawText(t *testing.T) {
	hash, length := HashReason("litigation pending in the EDNY")

	assert.Len(t, hash, 64)
	assert.Equal(t, len("litigation pending in the EDNY"), length)
}
