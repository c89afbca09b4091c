package scenario

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLStore_Create(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("successfully create scenario", func(t *testing.T) {
		targetID := uuid.New()
		sc := createTestScenario("login-check", "verify login", targetID, loginSteps())
		err := store.Create(ctx, sc)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, sc.ID)
		assert.Equal(t, uint(1), sc.Version)
		assert.True(t, sc.IsLatest)
	})

	t.Run("invalid scenario returns error", func(t *testing.T) {
		sc := &Scenario{
			Description: "missing name",
			TargetID:    uuid.New(),
			Steps:       loginSteps(),
		}
		err := store.Create(ctx, sc)
		assert.ErrorIs(t, err, ErrInvalidScenarioName)
	})

	t.Run("scenario without steps returns error", func(t *testing.T) {
		sc := createTestScenario("empty", "no steps", uuid.New(), nil)
		err := store.Create(ctx, sc)
		assert.ErrorIs(t, err, ErrNoSteps)
	})
}

func TestMySQLStore_GetByID(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("retrieve existing scenario", func(t *testing.T) {
		targetID := uuid.New()
		sc := createTestScenario("login-check", "verify login", targetID, loginSteps())
		require.NoError(t, store.Create(ctx, sc))

		got, err := store.GetByID(ctx, sc.ID)
		require.NoError(t, err)
		assert.Equal(t, sc.ID, got.ID)
		assert.Equal(t, "login-check", got.Name)
		assert.Equal(t, loginSteps(), got.Steps)
	})

	t.Run("unknown ID returns not found", func(t *testing.T) {
		_, err := store.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrScenarioNotFound)
	})
}

func TestMySQLStore_GetByName(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()
	targetID := uuid.New()

	sc := createTestScenario("rbac-frontend", "", targetID, loginSteps())
	require.NoError(t, store.Create(ctx, sc))

	t.Run("retrieve by target and name", func(t *testing.T) {
		got, err := store.GetByName(ctx, targetID, "rbac-frontend")
		require.NoError(t, err)
		assert.Equal(t, sc.ID, got.ID)
	})

	t.Run("name scoped to target", func(t *testing.T) {
		_, err := store.GetByName(ctx, uuid.New(), "rbac-frontend")
		assert.ErrorIs(t, err, ErrScenarioNotFound)
	})
}

func TestMySQLStore_Update(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()
	targetID := uuid.New()

	sc := createTestScenario("login-check", "verify login", targetID, loginSteps())
	require.NoError(t, store.Create(ctx, sc))

	t.Run("update description in place", func(t *testing.T) {
		err := store.Update(ctx, sc.ID, SetDescription("updated"))
		require.NoError(t, err)

		got, err := store.GetByID(ctx, sc.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Description)
		assert.Equal(t, uint(1), got.Version)
	})

	t.Run("setter error aborts update", func(t *testing.T) {
		err := store.Update(ctx, sc.ID, SetName(""))
		assert.ErrorIs(t, err, ErrInvalidScenarioName)
	})

	t.Run("update unknown scenario", func(t *testing.T) {
		err := store.Update(ctx, uuid.New(), SetDescription("nope"))
		assert.ErrorIs(t, err, ErrScenarioNotFound)
	})
}

func TestMySQLStore_Versioning(t *testing.T) {
	db, store := setupTestStore(t)
	ctx := context.Background()
	targetID := uuid.New()

	t.Run("recreating a scenario demotes the earlier version", func(t *testing.T) {
		v1 := createTestScenario("login-check", "first", targetID, loginSteps())
		require.NoError(t, store.Create(ctx, v1))

		v2 := createTestScenario("login-check", "second", targetID, loginSteps())
		require.NoError(t, store.Create(ctx, v2))
		assert.Equal(t, uint(2), v2.Version)

		var latestCount int64
		require.NoError(t, db.Model(&Scenario{}).
			Where("target_id = ? AND name = ? AND is_latest = ?", targetID, "login-check", true).
			Count(&latestCount).Error)
		assert.Equal(t, int64(1), latestCount)

		got, err := store.GetByName(ctx, targetID, "login-check")
		require.NoError(t, err)
		assert.Equal(t, v2.ID, got.ID)

		old, err := store.GetByID(ctx, v1.ID)
		require.NoError(t, err)
		assert.False(t, old.IsLatest)
	})

	t.Run("replacing steps creates a new latest version", func(t *testing.T) {
		sc := createTestScenario("signup-check", "signup flow", targetID, loginSteps())
		require.NoError(t, store.Create(ctx, sc))

		newSteps := Steps{
			{Action: ActionNavigate, Path: "/signup"},
			{Action: ActionExpectText, Text: "Create account"},
		}
		next, err := store.ReplaceSteps(ctx, sc.ID, newSteps)
		require.NoError(t, err)
		assert.NotEqual(t, sc.ID, next.ID)
		assert.Equal(t, uint(2), next.Version)
		assert.Equal(t, "signup flow", next.Description)
		assert.Equal(t, newSteps, next.Steps)

		// The earlier version keeps its steps but is no longer latest.
		old, err := store.GetByID(ctx, sc.ID)
		require.NoError(t, err)
		assert.Equal(t, loginSteps(), old.Steps)
		assert.False(t, old.IsLatest)

		got, err := store.GetByName(ctx, targetID, "signup-check")
		require.NoError(t, err)
		assert.Equal(t, next.ID, got.ID)
	})

	t.Run("listing shows only latest versions", func(t *testing.T) {
		scenarios, err := store.ListByTarget(ctx, targetID, 10, 0)
		require.NoError(t, err)
		require.Len(t, scenarios, 2)
		for _, sc := range scenarios {
			assert.True(t, sc.IsLatest)
			assert.Equal(t, uint(2), sc.Version)
		}
	})

	t.Run("replace steps on unknown scenario", func(t *testing.T) {
		_, err := store.ReplaceSteps(ctx, uuid.New(), loginSteps())
		assert.ErrorIs(t, err, ErrScenarioNotFound)
	})

	t.Run("replace with invalid steps keeps the chain intact", func(t *testing.T) {
		sc := createTestScenario("reset-check", "", targetID, loginSteps())
		require.NoError(t, store.Create(ctx, sc))

		_, err := store.ReplaceSteps(ctx, sc.ID, nil)
		assert.ErrorIs(t, err, ErrNoSteps)

		got, err := store.GetByName(ctx, targetID, "reset-check")
		require.NoError(t, err)
		assert.Equal(t, sc.ID, got.ID)
		assert.True(t, got.IsLatest)
	})
}

func TestMySQLStore_Delete(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	sc := createTestScenario("login-check", "", uuid.New(), loginSteps())
	require.NoError(t, store.Create(ctx, sc))

	require.NoError(t, store.Delete(ctx, sc.ID))

	_, err := store.GetByID(ctx, sc.ID)
	assert.ErrorIs(t, err, ErrScenarioNotFound)

	assert.ErrorIs(t, store.Delete(ctx, sc.ID), ErrScenarioNotFound)
}

func TestMySQLStore_ListByTarget(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()
	targetID := uuid.New()

	for _, name := range []string{"alpha", "bravo", "charlie"} {
		sc := createTestScenario(name, "", targetID, loginSteps())
		require.NoError(t, store.Create(ctx, sc))
	}
	// Scenario on a different target should not show up.
	other := createTestScenario("delta", "", uuid.New(), loginSteps())
	require.NoError(t, store.Create(ctx, other))

	scenarios, err := store.ListByTarget(ctx, targetID, 10, 0)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "alpha", scenarios[0].Name)

	scenarios, err = store.ListByTarget(ctx, targetID, 2, 1)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "bravo", scenarios[0].Name)
}
