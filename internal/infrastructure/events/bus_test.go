package events

import (
	"testing"
	"time"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

func TestSubscribeReceivesMatchingEvents(t *testing.T) {
	bus := New()
	defer bus.Close()

	ch := bus.Subscribe(domainClaims.EventClaimSubmitted)

	bus.Emit(domainClaims.NewClaimEvent(domainClaims.EventClaimSubmitted, "EXP-1", nil))
	bus.Emit(domainClaims.NewClaimEvent(domainClaims.EventClaimApproved, "EXP-1", nil))

	select {
	case event := <-ch:
		if event.Type != domainClaims.EventClaimSubmitted || event.ClaimID != "EXP-1" {
			t.Errorf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case event := <-ch:
		t.Errorf("received event of wrong type: %+v", event)
	default:
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := New()
	defer bus.Close()

	ch := bus.SubscribeAll()

	bus.Emit(domainClaims.NewClaimEvent(domainClaims.EventClaimCreated, "EXP-1", nil))
	bus.Emit(domainClaims.NewPipelineEvent(domainClaims.EventPipelineBlocked, "EXP-1", "blocked"))

	for i := 0; i < 2; i++ {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestHandlerInvoked(t *testing.T) {
	bus := New()
	defer bus.Close()

	done := make(chan *domainClaims.ClaimEvent, 1)
	bus.On(domainClaims.EventPipelineApproved, func(event *domainClaims.ClaimEvent) {
		done <- event
	})

	bus.Emit(domainClaims.NewPipelineEvent(domainClaims.EventPipelineApproved, "EXP-2", "Auto-approved"))

	select {
	case event := <-done:
		if event.ClaimID != "EXP-2" {
			t.Errorf("handler got wrong event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestEmitAfterCloseIsNoOp(t *testing.T) {
	bus := New()
	ch := bus.Subscribe(domainClaims.EventClaimCreated)
	bus.Close()

	// Must not panic on a closed bus.
	bus.Emit(domainClaims.NewClaimEvent(domainClaims.EventClaimCreated, "EXP-1", nil))

	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed")
	}
}

func TestFullSubscriberDoesNotBlockEmit(t *testing.T) {
	bus := New(WithBufferSize(1))
	defer bus.Close()

	bus.Subscribe(domainClaims.EventClaimUpdated)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Emit(domainClaims.NewClaimEvent(domainClaims.EventClaimUpdated, "EXP-1", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full subscriber channel")
	}
}
