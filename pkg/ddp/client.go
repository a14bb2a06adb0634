/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ddp implements the client side of Meteor's Distributed Data
// Protocol over a websocket: method calls, subscriptions and the collection
// data stream they produce.
package ddp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/gafo/pkg/logger"
)

var (
	// ErrClosed is returned for operations on a closed client.
	ErrClosed = errors.New("ddp connection closed")
	// ErrConnectFailed is returned when the server rejects the handshake.
	ErrConnectFailed = errors.New("ddp connect rejected")
	// ErrUnexpectedMessage is returned for a handshake reply that is neither connected nor failed.
	ErrUnexpectedMessage = errors.New("unexpected ddp message")
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	writeTimeout            = 10 * time.Second
)

// DataHandler receives collection data frames in arrival order. It is called
// from the read loop and must not block.
type DataHandler func(msg *Message)

// Options configures Dial.
type Options struct {
	Header           http.Header
	Dialer           *websocket.Dialer
	HandshakeTimeout time.Duration
	OnData           DataHandler
	Logger           logger.Logger
}

type pendingResult struct {
	result []byte
	err    error
}

// Client is a single DDP session. It is safe for concurrent use.
type Client struct {
	conn    *websocket.Conn
	session string
	onData  DataHandler
	logger  logger.Logger

	writeMu sync.Mutex
	nextID  atomic.Uint64

	mu    sync.Mutex
	calls map[string]chan pendingResult
	subs  map[string]chan error
	// stopping holds subscriptions this client asked the server to end.
	stopping map[string]struct{}

	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// Dial opens the websocket, performs the DDP connect handshake and starts the
// read loop.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial %s (HTTP %s): %w", url, resp.Status, err)
		}

		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	c := &Client{
		conn:   conn,
		onData: opts.OnData,
		logger: opts.Logger,
		calls:  make(map[string]chan pendingResult),
		subs:     make(map[string]chan error),
		stopping: make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}

	if err := c.handshake(ctx, timeout); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go c.readLoop()

	return c, nil
}

func (c *Client) handshake(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	if err := c.send(&Message{
		Msg:     MsgConnect,
		Version: ProtocolVersion,
		Support: []string{ProtocolVersion},
	}); err != nil {
		return fmt.Errorf("failed to send connect: %w", err)
	}

	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			return fmt.Errorf("failed to read connect reply: %w", err)
		}

		switch m.Msg {
		case MsgConnected:
			c.session = m.Session
			return c.conn.SetReadDeadline(time.Time{})
		case MsgFailed:
			return fmt.Errorf("%w: server wants version %q", ErrConnectFailed, m.Version)
		case "":
			// {"server_id": "0"} preamble
			continue
		case MsgPing:
			if err := c.send(&Message{Msg: MsgPong, ID: m.ID}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q during handshake", ErrUnexpectedMessage, m.Msg)
		}
	}
}

// Session returns the session id assigned by the server.
func (c *Client) Session() string {
	return c.session
}

// Done is closed when the connection is lost or closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, or nil while it is open.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Close terminates the session.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	c.fail(ErrClosed)

	return nil
}

func (c *Client) fail(err error) {
	c.closeOnce.Do(func() {
		c.err = err
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) id() string {
	return strconv.FormatUint(c.nextID.Add(1), 10)
}

func (c *Client) send(m *Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return c.conn.WriteJSON(m)
}

func (c *Client) readLoop() {
	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.fail(ErrClosed)
			} else {
				c.fail(fmt.Errorf("ddp read failed: %w", err))
			}

			return
		}

		c.dispatch(&m)
	}
}

func (c *Client) dispatch(m *Message) {
	switch {
	case m.Msg == MsgPing:
		if err := c.send(&Message{Msg: MsgPong, ID: m.ID}); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to answer ping")
		}
	case m.Msg == MsgResult:
		c.resolveCall(m)
	case m.Msg == MsgReady:
		for _, id := range m.Subs {
			c.resolveSub(id, nil)
		}
	case m.Msg == MsgNoSub:
		var err error = ErrClosed
		if m.Error != nil {
			err = m.Error
		}

		switch {
		case c.resolveSub(m.ID, err):
		case m.Error == nil && c.stopped(m.ID):
			c.logger.Debug().Str("sub_id", m.ID).Msg("Subscription stopped")
		default:
			c.logger.Warn().Str("sub_id", m.ID).Err(err).Msg("Subscription stopped by server")
		}
	case m.IsData():
		if c.onData != nil {
			c.onData(m)
		}
	case m.Msg == MsgError:
		c.logger.Error().Str("reason", m.Reason).Msg("Server reported protocol error")
	case m.Msg == MsgPong, m.Msg == MsgUpdated, m.Msg == "":
	default:
		c.logger.Debug().Str("msg", m.Msg).Msg("Ignoring unknown ddp message")
	}
}

func (c *Client) resolveCall(m *Message) {
	c.mu.Lock()
	ch, ok := c.calls[m.ID]
	delete(c.calls, m.ID)
	c.mu.Unlock()

	if !ok {
		return
	}

	if m.Error != nil {
		ch <- pendingResult{err: m.Error}
		return
	}

	ch <- pendingResult{result: m.Result}
}

func (c *Client) resolveSub(id string, err error) bool {
	c.mu.Lock()
	ch, ok := c.subs[id]
	delete(c.subs, id)
	c.mu.Unlock()

	if ok {
		ch <- err
	}

	return ok
}
