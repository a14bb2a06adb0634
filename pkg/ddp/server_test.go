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

package ddp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

type methodFunc func(params []interface{}) (interface{}, *Error)

type subFunc func(s *serverConn, params []interface{}) *Error

// fakeServer is a scripted DDP server for tests.
type fakeServer struct {
	t       *testing.T
	srv     *httptest.Server
	reject  bool
	methods map[string]methodFunc
	subs    map[string]subFunc

	mu    sync.Mutex
	conns []*serverConn
	pongs  chan string
	unsubs chan string
}

type serverConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *serverConn) write(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.WriteJSON(v)
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	f := &fakeServer{
		t:       t,
		methods: make(map[string]methodFunc),
		subs:    make(map[string]subFunc),
		pongs:   make(chan string, 4),
		unsubs:  make(chan string, 4),
	}

	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/websocket"
}

// push sends a frame to every connected client.
func (f *fakeServer) push(v interface{}) {
	f.mu.Lock()
	conns := append([]*serverConn(nil), f.conns...)
	f.mu.Unlock()

	for _, c := range conns {
		c.write(v)
	}
}

// dropAll closes every client connection without a close frame.
func (f *fakeServer) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.conns {
		_ = c.conn.Close()
	}
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sc := &serverConn{conn: conn}

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil || hello.Msg != MsgConnect {
		_ = conn.Close()
		return
	}

	sc.write(map[string]string{"server_id": "0"})

	if f.reject {
		sc.write(Message{Msg: MsgFailed, Version: "pre2"})
		_ = conn.Close()

		return
	}

	sc.write(Message{Msg: MsgConnected, Session: "sess-1"})

	f.mu.Lock()
	f.conns = append(f.conns, sc)
	f.mu.Unlock()

	for {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			return
		}

		switch m.Msg {
		case MsgMethod:
			f.handleMethod(sc, &m)
		case MsgSub:
			f.handleSub(sc, &m)
		case MsgUnsub:
			f.unsubs <- m.ID
			sc.write(Message{Msg: MsgNoSub, ID: m.ID})
		case MsgPong:
			f.pongs <- m.ID
		case MsgPing:
			sc.write(Message{Msg: MsgPong, ID: m.ID})
		}
	}
}

func (f *fakeServer) handleMethod(sc *serverConn, m *Message) {
	fn, ok := f.methods[m.Method]
	if !ok {
		sc.write(Message{Msg: MsgResult, ID: m.ID, Error: &Error{
			Code:   json.RawMessage(`404`),
			Reason: "Method '" + m.Method + "' not found",
		}})

		return
	}

	result, merr := fn(m.Params)
	if merr != nil {
		sc.write(Message{Msg: MsgResult, ID: m.ID, Error: merr})
	} else {
		raw, _ := json.Marshal(result)
		sc.write(Message{Msg: MsgResult, ID: m.ID, Result: raw})
	}

	sc.write(Message{Msg: MsgUpdated, Methods: []string{m.ID}})
}

func (f *fakeServer) handleSub(sc *serverConn, m *Message) {
	fn, ok := f.subs[m.Name]
	if !ok {
		sc.write(Message{Msg: MsgNoSub, ID: m.ID, Error: &Error{
			Code:   json.RawMessage(`404`),
			Reason: "Subscription '" + m.Name + "' not found",
		}})

		return
	}

	if merr := fn(sc, m.Params); merr != nil {
		sc.write(Message{Msg: MsgNoSub, ID: m.ID, Error: merr})
		return
	}

	sc.write(Message{Msg: MsgReady, Subs: []string{m.ID}})
}
