// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/subcoolabs/manifold/pkg/givre"
)

var watchInterval int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Full-screen live telemetry view",
	Long: `Watch the unit live in a full-screen terminal view.

The view polls the unit on a fixed interval and shows the latest sensor
readings, the operating mode inferred from the line temperatures with the
safety gate state, line statistics, and a scrolling event log of decode
errors and anomalies. The connection is reopened automatically with
exponential backoff when it drops.

Display only - nothing but poll queries is ever sent.

Keys:
  q / ctrl+c - quit

Supports both serial and WebSocket connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVar(&watchInterval, "interval", 2, "Query poll interval (seconds)")
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	conn     Connection
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}
}

func (cm *connectionManager) getConn() Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

// sendQuery writes one poll query; failures are left for the reader loop
// to surface as a connection loss
func (cm *connectionManager) sendQuery() {
	conn := cm.getConn()
	if conn == nil {
		return
	}
	conn.Write(givre.NewStatusQuery())
}

func runWatch(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	cm := &connectionManager{
		conn:     conn,
		connInfo: connInfo,
		done:     make(chan struct{}),
	}

	m := initialWatchModel(cm, connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	go cm.readerLoop()

	// First poll before the tick cadence starts
	cm.sendQuery()

	if _, err := p.Run(); err != nil {
		close(cm.done)
		cm.getConn().Close()
		return fmt.Errorf("TUI error: %v", err)
	}

	close(cm.done)
	cm.getConn().Close()
	return nil
}

// readerLoop handles reading from the connection with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		connLost := cm.readFromConnection()

		if connLost {
			cm.p.Send(connectionLostMsg{})

			if !cm.reconnect() {
				return // Shutdown requested during reconnect
			}
		}
	}
}

// readFromConnection decodes frames from the connection until it fails.
// Returns true if the connection was lost, false if shutdown was requested.
func (cm *connectionManager) readFromConnection() bool {
	decoder := givre.NewDecoder()
	synchronized := false
	invalidBytesBeforeSync := 0

	// Buffered channel for batching updates
	batchChan := make(chan watchDataMsg, 100)
	syncChan := make(chan watchSyncMsg, 1)
	readerDone := make(chan struct{})

	// Reader goroutine - decodes frames and sends to the batch channel
	go func() {
		defer close(readerDone)
		buf := make([]byte, 256)
		for {
			select {
			case <-cm.done:
				return
			default:
			}

			conn := cm.getConn()
			if conn == nil {
				return
			}

			n, err := conn.Read(buf)
			if err != nil {
				select {
				case <-cm.done:
					return
				default:
					// A closed WebSocket never recovers; serial errors
					// are usually transient
					if err == ErrConnectionClosed {
						return
					}
					time.Sleep(10 * time.Millisecond)
					continue
				}
			}

			for i := 0; i < n; i++ {
				frame, decodeErr := decoder.DecodeByte(buf[i])

				if decodeErr != nil {
					if synchronized {
						select {
						case batchChan <- watchDataMsg{decodeErr: decodeErr}:
						default:
						}
					} else {
						invalidBytesBeforeSync++
					}
				} else if frame != nil {
					if !synchronized {
						synchronized = true
						select {
						case syncChan <- watchSyncMsg{invalidBytes: invalidBytesBeforeSync}:
						default:
						}
					}

					var anomalies []givre.ValidationError
					if frame.Type() == givre.FrameStatus {
						if status, err := givre.DecodeStatus(frame); err == nil {
							anomalies, _ = givre.ValidateStatus(status)
						}
					}
					select {
					case batchChan <- watchDataMsg{frame: frame, validationErrors: anomalies}:
					default:
					}
				}
			}
		}
	}()

	// Batch sender goroutine - forwards batched updates to the TUI at a fixed rate
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-cm.done:
				return
			case <-readerDone:
				return
			case <-ticker.C:
				var batch watchBatchMsg

				select {
				case sync := <-syncChan:
					batch.syncMsg = &sync
				default:
				}

			drainLoop:
				for {
					select {
					case msg := <-batchChan:
						batch.messages = append(batch.messages, msg)
					default:
						break drainLoop
					}
				}

				if batch.syncMsg != nil || len(batch.messages) > 0 {
					cm.p.Send(batch)
				}
			}
		}
	}()

	// Wait for the reader to finish (connection lost or shutdown)
	<-readerDone

	select {
	case <-cm.done:
		return false
	default:
		return true // Connection lost
	}
}

// reconnect attempts to reconnect with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (cm *connectionManager) reconnect() bool {
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := OpenConnection()
		if err == nil {
			cm.setConn(conn, connInfo)

			cm.p.Send(reconnectedMsg{connInfo: connInfo})

			cm.sendQuery()

			return true
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
