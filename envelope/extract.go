package envelope

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/MVdovychenko/agentic-ai/components"
)

// FenceTag labels the fenced block that carries an envelope.
const FenceTag = "RESULT_JSON"

// ErrMultipleBlocks reports a worker contract violation: more than one
// RESULT_JSON block inside a single message. The offending message is
// treated like a malformed one and contributes nothing.
var ErrMultipleBlocks = errors.New("multiple RESULT_JSON blocks in one message")

// Encode renders the envelope as a fenced RESULT_JSON block. The block is
// the entire content of a worker's final message.
func Encode(env *Envelope) (string, error) {
	if err := env.Validate(); err != nil {
		return "", err
	}
	bs, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("```")
	b.WriteString(FenceTag)
	b.WriteByte('\n')
	b.Write(bs)
	b.WriteString("\n```")
	return b.String(), nil
}

// Extract scans the conversation log from the most recent message backward
// and returns the first well-formed envelope it finds. Malformed blocks are
// treated identically to absent ones. The returned error is advisory: it
// flags a contract violation seen along the way without preventing an older
// valid envelope from being returned.
func Extract(history []components.Message) (*Envelope, bool, error) {
	var scanErr error
	for i := len(history) - 1; i >= 0; i-- {
		bodies := fencedBodies(history[i].StringifiedContent())
		if len(bodies) == 0 {
			continue
		}
		if len(bodies) > 1 {
			if scanErr == nil {
				scanErr = ErrMultipleBlocks
			}
			continue
		}
		env := new(Envelope)
		if err := json.Unmarshal([]byte(bodies[0]), env); err != nil {
			continue
		}
		if err := env.Validate(); err != nil {
			continue
		}
		return env, true, scanErr
	}
	return nil, false, scanErr
}

// fencedBodies returns the bodies of all RESULT_JSON fenced blocks in the
// given text. Both "```RESULT_JSON" and "```json RESULT_JSON" openers are
// accepted; the original emitter used the latter.
func fencedBodies(content string) []string {
	var (
		bodies  []string
		current []string
		inBlock bool
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if isOpeningFence(trimmed) {
				inBlock = true
				current = current[:0]
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			bodies = append(bodies, strings.Join(current, "\n"))
			inBlock = false
			continue
		}
		current = append(current, line)
	}
	return bodies
}

func isOpeningFence(line string) bool {
	if !strings.HasPrefix(line, "```") {
		return false
	}
	tag := strings.TrimSpace(strings.TrimPrefix(line, "```"))
	tag = strings.TrimSpace(strings.TrimPrefix(tag, "json"))
	return tag == FenceTag
}
