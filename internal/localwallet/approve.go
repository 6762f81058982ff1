package localwallet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ApprovalKind names what the user is asked to approve.
type ApprovalKind string

// Approval kinds.
const (
	ApproveConnect         ApprovalKind = "connect"
	ApproveSignMessage     ApprovalKind = "sign message"
	ApproveSignTransaction ApprovalKind = "sign transaction"
)

// ApprovalRequest describes a pending user decision.
type ApprovalRequest struct {
	Kind    ApprovalKind
	Origin  string
	Account string
	// Detail is shown verbatim, e.g. the message text or its hex form.
	Detail string
}

// Approver decides whether a request may proceed. A false answer is a user
// rejection; an error aborts the request.
type Approver interface {
	Approve(ctx context.Context, req ApprovalRequest) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, req ApprovalRequest) (bool, error)

// Approve calls f.
func (f ApproverFunc) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	return f(ctx, req)
}

// AutoApprover answers every request with Allow. Intended for scripted use.
type AutoApprover struct {
	Allow bool
}

// Approve returns a.Allow.
func (a AutoApprover) Approve(context.Context, ApprovalRequest) (bool, error) {
	return a.Allow, nil
}

// LineReader reads lines on demand. A read abandoned through its context is
// kept and returned to the next caller, so prompts sharing one terminal never
// read concurrently.
type LineReader struct {
	mu      sync.Mutex
	r       *bufio.Reader
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// once input is exhausted.
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.pending == nil {
		ch := make(chan lineResult, 1)
		l.pending = ch
		go func() {
			line, err := l.r.ReadString('\n')
			ch <- lineResult{line, err}
		}()
	}
	ch := l.pending
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		l.mu.Lock()
		l.pending = nil
		l.mu.Unlock()

		if res.line == "" && res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}

// TerminalApprover prints requests to out and reads y/N answers from lines.
type TerminalApprover struct {
	mu    sync.Mutex
	lines *LineReader
	out   io.Writer
}

// NewTerminalApprover creates a prompt-based approver.
func NewTerminalApprover(lines *LineReader, out io.Writer) *TerminalApprover {
	return &TerminalApprover{lines: lines, out: out}
}

// Approve prints the request and waits for an answer. Anything other than
// y or yes is a rejection, as is end of input. Cancelling ctx abandons the
// prompt.
func (t *TerminalApprover) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n%s requests to %s", req.Origin, req.Kind)
	if req.Account != "" {
		fmt.Fprintf(t.out, " with %s", req.Account)
	}
	fmt.Fprintln(t.out)
	if req.Detail != "" {
		fmt.Fprintf(t.out, "  %s\n", req.Detail)
	}
	fmt.Fprint(t.out, "Approve? [y/N]: ")

	line, err := t.lines.ReadLine(ctx)
	switch {
	case errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		if ctx.Err() != nil {
			return false, err
		}
		return false, fmt.Errorf("reading approval: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
