package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lucianommartins/terminal-tutor/internal/session"
)

// eventPrefix marks SSE lines that carry a JSON event body. Non-prefixed
// lines (blank separators, keep-alives) are ignored.
const eventPrefix = "data: "

// Sink receives text fragments as they arrive. Fragments are opaque text to
// concatenate and may end mid-word. Invocations are synchronous and
// strictly ordered; a sink runs to completion before the next fragment is
// processed.
type Sink func(fragment string)

// sseAccumulator is the transient per-call state of one streaming response:
// a pending partial-line buffer and the accumulated full text. It exists
// only for the duration of the call.
type sseAccumulator struct {
	pending []byte
	text    strings.Builder
	sink    Sink
}

// feed appends newly received bytes and drains every complete line from the
// buffer, leaving a trailing partial line pending for the next receive.
func (a *sseAccumulator) feed(p []byte) {
	a.pending = append(a.pending, p...)
	for {
		i := bytes.IndexByte(a.pending, '\n')
		if i < 0 {
			return
		}
		line := a.pending[:i]
		a.pending = a.pending[i+1:]
		line = bytes.TrimSuffix(line, []byte{'\r'})
		a.consumeLine(line)
	}
}

// consumeLine parses one event line. Unparseable payloads and events without
// the candidate text path are dropped silently: streaming responses
// legitimately interleave non-text control events, and they must not abort
// the stream.
func (a *sseAccumulator) consumeLine(line []byte) {
	if !bytes.HasPrefix(line, []byte(eventPrefix)) {
		return
	}
	var event generateResponse
	if err := json.Unmarshal(line[len(eventPrefix):], &event); err != nil {
		return
	}
	fragment, ok := firstText(event)
	if !ok || fragment == "" {
		return
	}
	a.text.WriteString(fragment)
	if a.sink != nil {
		a.sink(fragment)
	}
}

// accumulated returns the full text reconstructed so far.
func (a *sseAccumulator) accumulated() string {
	return a.text.String()
}

// streamGenerate opens the streaming endpoint and pushes each text fragment
// to the sink as it arrives; the only buffering is what event-boundary
// detection requires. It returns the accumulated full text. On a mid-stream
// transport failure the partial accumulated text is returned together with
// the error; the two are not mutually exclusive.
func (c *Client) streamGenerate(ctx context.Context, prompt string, useHistory bool, sink Sink) (string, error) {
	var history []session.Turn
	if useHistory {
		history = c.session.History()
	}
	contents := buildContents(history, prompt)

	body, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("streamGenerateContent")+"&alt=sse", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", protocolError(resp.StatusCode, raw)
	}

	acc := &sseAccumulator{sink: sink}
	buf := make([]byte, 1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			acc.feed(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return acc.accumulated(), fmt.Errorf("streaming transport error: %w", err)
		}
	}

	return acc.accumulated(), nil
}

// StreamQuery streams a free-form plain-text answer for the given prompt,
// invoking the sink per fragment. record is the text committed to the
// session as the user turn, typically the bare query rather than the rendered
// prompt with its directives. The exchange is recorded only after the stream
// completes cleanly.
func (c *Client) StreamQuery(ctx context.Context, prompt, record string, sink Sink) (string, error) {
	full, err := c.streamGenerate(ctx, prompt, true, sink)
	if err != nil {
		return full, err
	}
	c.session.RecordExchange(record, full)
	return full, nil
}
