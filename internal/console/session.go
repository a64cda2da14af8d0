package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"

	"chatbot-relay/internal/usecase"
)

const exitSentinel = "exit"

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// Session is the terminal chat loop. It alternates between prompting and one
// blocking upstream call until the exit sentinel, EOF or cancellation.
type Session struct {
	chat        ChatUseCase
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewSession reads lines from in and writes replies to out. When interactive
// is set the banner and the "You:" prompt are printed as well.
func NewSession(uc ChatUseCase, in io.Reader, out io.Writer, interactive bool) (*Session, error) {
	if uc == nil {
		return nil, errors.New("console: chat use case must not be nil")
	}
	if in == nil || out == nil {
		return nil, errors.New("console: input and output must not be nil")
	}
	return &Session{chat: uc, in: bufio.NewReader(in), out: out, interactive: interactive}, nil
}

type readResult struct {
	line string
	err  error
}

// Run loops until the session terminates. Upstream failures are reported and
// the loop continues; only a read error other than EOF is returned.
func (s *Session) Run(ctx context.Context) error {
	if s.interactive {
		fmt.Fprintf(s.out, "👋 Welcome! I'm your chatbot. Type '%s' to end the chat.\n\n", exitSentinel)
	}

	done := make(chan struct{})
	defer close(done)
	lines := s.readLines(done)

	for {
		if ctx.Err() != nil {
			return s.goodbye()
		}
		if s.interactive {
			fmt.Fprintf(s.out, "%v: ", ancli.ColoredMessage(ancli.CYAN, "You"))
		}

		var r readResult
		select {
		case <-ctx.Done():
			return s.goodbye()
		case r = <-lines:
		}
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return fmt.Errorf("console: read input: %w", r.err)
		}
		eof := errors.Is(r.err, io.EOF)
		line := strings.TrimSuffix(strings.TrimSuffix(r.line, "\n"), "\r")

		switch {
		case strings.EqualFold(strings.TrimSpace(line), exitSentinel):
			return s.goodbye()
		case ctx.Err() != nil:
			return s.goodbye()
		case strings.TrimSpace(line) == "":
			if eof {
				return s.goodbye()
			}
			continue
		}

		s.turn(ctx, line)
		if eof {
			return s.goodbye()
		}
	}
}

// readLines feeds lines from the input until a read error or until done is
// closed. A blocked read outlives Run; it is released when the input closes.
func (s *Session) readLines(done <-chan struct{}) <-chan readResult {
	lines := make(chan readResult)
	go func() {
		for {
			line, err := s.in.ReadString('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

func (s *Session) turn(ctx context.Context, line string) {
	out, err := s.chat.Chat(ctx, usecase.ChatInput{Message: line})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n\n", err)
		return
	}
	fmt.Fprintf(s.out, "Bot: %s\n\n", out.Response)
}

func (s *Session) goodbye() error {
	fmt.Fprintln(s.out, "Goodbye! 👋")
	return nil
}
