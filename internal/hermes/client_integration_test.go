//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_PubSub(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()
	logger := slog.Default()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), logger)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan map[string]string, 1)

	err = client.Subscribe("swarm.scribe.test.>", func(subject string, data []byte) {
		var msg map[string]string
		json.Unmarshal(data, &msg)
		received <- msg
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	err = client.Publish("swarm.scribe.test.ping", map[string]string{
		"message": "hello from integration test",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg["message"] != "hello from integration test" {
			t.Errorf("expected hello message, got %v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestIntegration_DocumentImprovedRoundTrip(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	logger := slog.Default()

	client, err := NewClient(context.Background(), natsURL, os.Getenv("NATS_TOKEN"), logger)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan DocumentImproved, 1)
	err = client.Subscribe(SubjectDocumentImproved, func(subject string, data []byte) {
		var evt DocumentImproved
		if json.Unmarshal(data, &evt) == nil {
			received <- evt
		}
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	want := DocumentImproved{DocumentID: "it-doc", OriginalText: "a", ImprovedText: "b", Language: "english"}
	if err := client.Publish(SubjectDocumentImproved, want); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for document event")
	}
	if !client.Connected() {
		t.Error("expected client to be connected")
	}
}

func TestIntegration_CloseFlushesPendingPublishes(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()
	logger := slog.Default()

	receiver, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), logger)
	if err != nil {
		t.Fatalf("failed to connect receiver: %v", err)
	}
	defer receiver.Close()

	const n = 500
	received := make(chan struct{}, n)
	err = receiver.Subscribe("swarm.scribe.test.drain", func(subject string, data []byte) {
		received <- struct{}{}
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	sender, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), logger)
	if err != nil {
		t.Fatalf("failed to connect sender: %v", err)
	}
	for i := 0; i < n; i++ {
		if err := sender.Publish("swarm.scribe.test.drain", map[string]int{"seq": i}); err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}
	sender.Close()
	if sender.Connected() {
		t.Error("expected sender to be closed once Close returns")
	}

	deadline := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-received:
		case <-deadline:
			t.Fatalf("received %d of %d messages", i, n)
		}
	}
}
