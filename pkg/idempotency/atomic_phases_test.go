package idempotency

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPhaseManager_Checkpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotKeyID, gotPhase string
	repo := &mockKeyRepository{
		updateRecoveryPointFunc: func(ctx context.Context, keyID string, phase string) error {
			gotKeyID = keyID
			gotPhase = phase
			return nil
		},
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextKeyIDempotencyKeyID, "key-123")

	pm := NewPhaseManager(c, repo)
	if pm == nil {
		t.Fatal("expected phase manager when a key is present in the context")
	}

	if err := pm.Checkpoint(context.Background(), "sale_committed"); err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}
	if gotKeyID != "key-123" {
		t.Errorf("checkpoint recorded for key %q, want %q", gotKeyID, "key-123")
	}
	if gotPhase != "sale_committed" {
		t.Errorf("checkpoint phase = %q, want %q", gotPhase, "sale_committed")
	}
}

func TestPhaseManager_NoKeyIsNoOp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	called := false
	repo := &mockKeyRepository{
		updateRecoveryPointFunc: func(ctx context.Context, keyID string, phase string) error {
			called = true
			return nil
		},
	}

	// No idempotency key in the request context
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	pm := NewPhaseManager(c, repo)
	if pm != nil {
		t.Fatal("expected nil phase manager without a key in the context")
	}

	// Checkpoint on a nil manager must be a silent no-op
	if err := pm.Checkpoint(context.Background(), "sale_committed"); err != nil {
		t.Fatalf("Checkpoint() on nil manager error = %v", err)
	}
	if called {
		t.Error("checkpoint should not reach the repository without a key")
	}
}

func TestPhaseManager_ShouldSkipPhase(t *testing.T) {
	keyID := primitive.NewObjectID().Hex()
	repo := &mockKeyRepository{
		getByIDFunc: func(ctx context.Context, id string) (*IdempotencyKey, error) {
			return &IdempotencyKey{RecoveryPoint: "sale_committed"}, nil
		},
	}

	pm := NewPhaseManagerFromContext(context.Background(), keyID, repo)

	skip, err := pm.ShouldSkipPhase(context.Background(), "sale_committed")
	if err != nil {
		t.Fatalf("ShouldSkipPhase() error = %v", err)
	}
	if !skip {
		t.Error("expected completed phase to be skipped")
	}

	skip, err = pm.ShouldSkipPhase(context.Background(), "receipt_linked")
	if err != nil {
		t.Fatalf("ShouldSkipPhase() error = %v", err)
	}
	if skip {
		t.Error("expected uncompleted phase not to be skipped")
	}
}
