package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamrahbot/sabt/internal/steps"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, time.Minute),
	}
}

func TestStoreUnknownUserGetsFreshSession(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			s, err := store.Get(context.Background(), 404)
			require.NoError(t, err)
			assert.Equal(t, StateIdle, s.State)
			assert.NotNil(t, s.Fields)
			assert.Empty(t, s.Fields)
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			s := New()
			s.State = StateStepInProgress
			s.CurrentStep = steps.NationalID
			s.PhoneNumber = "09121234567"
			s.ReferrerCode = "a1b2c3"
			first := "علی"
			s.SetField(steps.FirstName, &first)
			s.SetField(steps.NationalID, nil) // skipped optional

			require.NoError(t, store.Put(ctx, 7, s))

			got, err := store.Get(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, StateStepInProgress, got.State)
			assert.Equal(t, steps.NationalID, got.CurrentStep)
			assert.Equal(t, "09121234567", got.PhoneNumber)
			assert.Equal(t, "علی", got.FieldString(steps.FirstName))

			v, ok := got.Field(steps.NationalID)
			require.True(t, ok, "skipped step must stay recorded")
			assert.Nil(t, v)
		})
	}
}

func TestStoreClear(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			s := New()
			s.State = StateAwaitingConfirmation
			require.NoError(t, store.Put(ctx, 9, s))
			require.NoError(t, store.Clear(ctx, 9))

			got, err := store.Get(ctx, 9)
			require.NoError(t, err)
			assert.Equal(t, StateIdle, got.State)
		})
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New()
	s.State = StateStepInProgress
	first := "زهرا"
	s.SetField(steps.FirstName, &first)
	require.NoError(t, store.Put(ctx, 1, s))

	// Mutating what we put or what we got must not leak into the store.
	mutated := "X"
	s.SetField(steps.FirstName, &mutated)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "زهرا", got.FieldString(steps.FirstName))

	got.State = StateIdle
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateStepInProgress, again.State)
}

func TestCloneCopiesPreviousStep(t *testing.T) {
	s := New()
	prev := steps.LastName
	s.PreviousStep = &prev

	c := s.Clone()
	*c.PreviousStep = steps.Gender
	assert.Equal(t, steps.LastName, *s.PreviousStep)
}
