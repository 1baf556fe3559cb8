package websocket

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPublishNeverBlocks(t *testing.T) {
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(events)+10; i++ {
			Publish(EarningEvent{MemberCode: "MX1001", Amount: decimal.NewFromInt(1), At: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with a full queue")
	}

	for len(events) > 0 {
		<-events
	}
	assert.False(t, Connected("MX1001"))
}
