// Copyright 2025 Ansvar Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// maxMessageSize bounds a single newline-delimited stdio message.
const maxMessageSize = 16 * 1024 * 1024

// ServeStdio reads newline-delimited JSON-RPC messages from in and writes
// responses to out until in is exhausted or ctx is cancelled.
func (h *Handler) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	w := bufio.NewWriter(out)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			msg := make([]byte, len(line))
			copy(msg, line)
			select {
			case lines <- msg:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	h.logger.Info("MCP stdio server started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read stdin: %w", err)
					}
				default:
				}
				return nil
			}
			resp := h.HandleMessage(ctx, msg)
			if resp == nil {
				continue
			}
			if _, err := w.Write(append(resp, '\n')); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}
}
