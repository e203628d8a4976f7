package hermes

import (
	"testing"
	"time"
)

func TestWaitClosed(t *testing.T) {
	closed := make(chan struct{})
	if waitClosed(closed, 10*time.Millisecond) {
		t.Error("expected timeout while the connection is still draining")
	}

	go close(closed)
	if !waitClosed(closed, time.Second) {
		t.Error("expected close to be observed")
	}
}
