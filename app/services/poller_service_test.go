package services

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newPollTestQueue(t *testing.T) *QueueService {
	t.Helper()
	q := newTestQueue(t, &fakePrinter{}, &fakeMarker{})
	q.Pause() // keep enqueued jobs observable
	return q
}

func TestPollNowEnqueuesPendingOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pedidos": [
			{"id": 1, "pedido": [{"pedido": "Chopp", "quantidade": 1}], "mesa": "3"},
			{"id": 2, "pedido": [{"pedido": "Batata", "quantidade": 2}], "mesa": "4"}
		]}`))
	}))
	defer srv.Close()

	queue := newPollTestQueue(t)
	poller := NewPollerService(NewBackendService(srv.URL, "c"), queue, newTestLogger(t), time.Minute)

	if added := poller.PollNow(); added != 2 {
		t.Fatalf("PollNow added %d, want 2", added)
	}
	if queue.Size() != 2 {
		t.Errorf("queue size = %d", queue.Size())
	}
}

func TestPollNowSkipsAlreadySeenOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pedidos": [
			{"id": 1, "pedido": [{"pedido": "Chopp", "quantidade": 1}]}
		]}`))
	}))
	defer srv.Close()

	queue := newPollTestQueue(t)
	poller := NewPollerService(NewBackendService(srv.URL, "c"), queue, newTestLogger(t), time.Minute)

	if added := poller.PollNow(); added != 1 {
		t.Fatalf("first PollNow added %d, want 1", added)
	}
	if added := poller.PollNow(); added != 0 {
		t.Errorf("second PollNow added %d, want 0", added)
	}
	if queue.Size() != 1 {
		t.Errorf("queue size = %d, want 1", queue.Size())
	}
}

func TestPollNowTreatsFetchErrorAsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	queue := newPollTestQueue(t)
	poller := NewPollerService(NewBackendService(srv.URL, "c"), queue, newTestLogger(t), time.Minute)

	if added := poller.PollNow(); added != 0 {
		t.Errorf("PollNow added %d on fetch error", added)
	}
	if queue.Size() != 0 {
		t.Errorf("queue size = %d", queue.Size())
	}
}

func TestPollNowWatchdogReleasesHungFetch(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release // first fetch hangs until the test ends
		}
		w.Write([]byte(`{"pedidos": [
			{"id": 1, "pedido": [{"pedido": "Chopp", "quantidade": 1}]}
		]}`))
	}))
	var once sync.Once
	releaseFetch := func() { once.Do(func() { close(release) }) }
	defer srv.Close()
	defer releaseFetch()

	queue := newPollTestQueue(t)
	poller := NewPollerService(NewBackendService(srv.URL, "c"), queue, newTestLogger(t), time.Minute)
	poller.watchdog = 50 * time.Millisecond

	hungDone := make(chan int)
	go func() { hungDone <- poller.PollNow() }()

	// wait for the hung fetch to take the in-flight flag
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && atomic.LoadInt32(&calls) == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt32(&calls) == 0 {
		t.Fatal("first fetch never started")
	}

	// once the watchdog fires, a later cycle must get through
	time.Sleep(100 * time.Millisecond)
	if added := poller.PollNow(); added != 1 {
		t.Errorf("PollNow after watchdog added %d, want 1", added)
	}

	releaseFetch()
	<-hungDone
}

func TestPollerStartRunsInitialCatchUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"pedidos": []}`))
	}))
	defer srv.Close()

	queue := newPollTestQueue(t)
	poller := NewPollerService(NewBackendService(srv.URL, "c"), queue, newTestLogger(t), time.Hour)
	poller.Start()
	defer poller.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && atomic.LoadInt32(&calls) == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt32(&calls) == 0 {
		t.Error("no catch-up fetch after Start")
	}
}
