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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Call invokes a server method and waits for its result.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	id := c.id()
	ch := make(chan pendingResult, 1)

	c.mu.Lock()
	c.calls[id] = ch
	c.mu.Unlock()

	if params == nil {
		params = []interface{}{}
	}

	if err := c.send(&Message{Msg: MsgMethod, ID: id, Method: method, Params: params}); err != nil {
		c.forgetCall(id)
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	select {
	case res := <-ch:
		return res.result, res.err
	case <-ctx.Done():
		c.forgetCall(id)
		return nil, ctx.Err()
	case <-c.done:
		c.forgetCall(id)
		return nil, c.err
	}
}

func (c *Client) forgetCall(id string) {
	c.mu.Lock()
	delete(c.calls, id)
	c.mu.Unlock()
}

// Subscribe starts a publication and waits until its initial data set has
// been delivered (the server's ready frame). It returns the subscription id.
func (c *Client) Subscribe(ctx context.Context, name string, params ...interface{}) (string, error) {
	id := c.id()
	ch := make(chan error, 1)

	c.mu.Lock()
	c.subs[id] = ch
	c.mu.Unlock()

	if params == nil {
		params = []interface{}{}
	}

	if err := c.send(&Message{Msg: MsgSub, ID: id, Name: name, Params: params}); err != nil {
		c.forgetSub(id)
		return "", fmt.Errorf("failed to subscribe to %s: %w", name, err)
	}

	select {
	case err := <-ch:
		if err != nil {
			return "", fmt.Errorf("subscription %s rejected: %w", name, err)
		}

		return id, nil
	case <-ctx.Done():
		c.forgetSub(id)
		return "", ctx.Err()
	case <-c.done:
		c.forgetSub(id)
		return "", c.err
	}
}

// Unsubscribe asks the server to stop a subscription started by Subscribe.
// It does not wait for the server's nosub.
func (c *Client) Unsubscribe(id string) error {
	c.mu.Lock()
	c.stopping[id] = struct{}{}
	c.mu.Unlock()

	if err := c.send(&Message{Msg: MsgUnsub, ID: id}); err != nil {
		c.mu.Lock()
		delete(c.stopping, id)
		c.mu.Unlock()

		return fmt.Errorf("failed to unsubscribe %s: %w", id, err)
	}

	return nil
}

func (c *Client) stopped(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.stopping[id]
	delete(c.stopping, id)

	return ok
}

func (c *Client) forgetSub(id string) {
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
}

// LoginResult is returned by the accounts-password login method.
type LoginResult struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type passwordDigest struct {
	Digest    string `json:"digest"`
	Algorithm string `json:"algorithm"`
}

type userSelector struct {
	Username string `json:"username"`
}

type passwordLogin struct {
	User     userSelector   `json:"user"`
	Password passwordDigest `json:"password"`
}

// DigestPassword hashes a password the way Meteor's accounts-password client does.
func DigestPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// LoginWithPassword calls the login method with a username and password.
func (c *Client) LoginWithPassword(ctx context.Context, username, password string) (*LoginResult, error) {
	raw, err := c.Call(ctx, "login", passwordLogin{
		User:     userSelector{Username: username},
		Password: passwordDigest{Digest: DigestPassword(password), Algorithm: "sha-256"},
	})
	if err != nil {
		return nil, err
	}

	var res LoginResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode login result: %w", err)
	}

	return &res, nil
}
