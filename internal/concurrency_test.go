// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package internal

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/devcli/internal/history"
	"github.com/jeranaias/devcli/internal/transport"
)

// TestConcurrency_TransportSend sends from several goroutines on one
// connection and checks every datagram arrives with a unique sequence.
func TestConcurrency_TransportSend(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	const workers, perWorker = 8, 25
	got := make(chan string, workers*perWorker)
	go func() {
		buf := make([]byte, 256)
		for {
			n, _, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			got <- string(buf[:n])
		}
	}()

	addr := pc.LocalAddr().(*net.UDPAddr)
	conn, err := transport.Dial(context.Background(), transport.Options{
		Kind:    transport.UDP,
		Address: "127.0.0.1",
		Port:    addr.Port,
	})
	require.NoError(t, err)
	defer conn.Close()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seqs = make(map[uint64]bool)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h, err := conn.Send([]byte(fmt.Sprintf("w%d-%d", w, i)))
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seqs[h.Seq] = true
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	assert.Len(t, seqs, workers*perWorker)

	seen := make(map[string]bool)
	timeout := time.After(3 * time.Second)
	for len(seen) < workers*perWorker {
		select {
		case s := <-got:
			seen[s] = true
		case <-timeout:
			t.Fatalf("received %d of %d datagrams", len(seen), workers*perWorker)
		}
	}
}

// TestConcurrency_SendRate checks the limiter spaces out sends.
func TestConcurrency_SendRate(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	conn, err := transport.Dial(context.Background(), transport.Options{
		Kind:     transport.UDP,
		Address:  "127.0.0.1",
		Port:     pc.LocalAddr().(*net.UDPAddr).Port,
		SendRate: 20,
	})
	require.NoError(t, err)
	defer conn.Close()

	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := conn.Send([]byte("ping"))
		require.NoError(t, err)
	}
	// The first send uses the burst; four more wait 50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

// TestConcurrency_HistoryStore appends from several goroutines.
func TestConcurrency_HistoryStore(t *testing.T) {
	store, err := history.OpenStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	const workers, perWorker = 6, 20
	ctx := context.Background()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				assert.NoError(t, store.Append(ctx, fmt.Sprintf("s%d", w), fmt.Sprintf("cmd %d", i)))
			}
		}(w)
	}
	wg.Wait()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, n)
}
