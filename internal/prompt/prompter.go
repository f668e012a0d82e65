package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ErrCancelled is returned when the input ends before a valid answer is
// given (Ctrl-D, closed stdin). It is distinct from an invalid answer, which
// is asked again.
var ErrCancelled = errors.New("prompt: input cancelled")

// Validator reports whether a trimmed answer is acceptable.
type Validator func(answer string) bool

type Prompter interface {
	// Ask prints question and reads answers until validate accepts one.
	Ask(question string, validate Validator) (string, error)
	// AskSecret is Ask without echoing the answer when reading from a terminal.
	AskSecret(question string, validate Validator) (string, error)
}

type cliPrompter struct {
	in     *bufio.Reader
	file   *os.File
	out    io.Writer
	symbol string
}

// New returns a Prompter reading answers from in and writing questions to out.
func New(in io.Reader, out io.Writer) Prompter {
	p := &cliPrompter{
		in:     bufio.NewReader(in),
		out:    out,
		symbol: color.New(color.FgGreen, color.Bold).Sprint("?"),
	}
	if f, ok := in.(*os.File); ok {
		p.file = f
	}
	return p
}

// NewCLIPrompter wires the prompter to the process terminal.
func NewCLIPrompter() Prompter {
	return New(os.Stdin, os.Stdout)
}

func (p *cliPrompter) Ask(question string, validate Validator) (string, error) {
	return p.loop(question, validate, p.readLine)
}

func (p *cliPrompter) AskSecret(question string, validate Validator) (string, error) {
	if p.file != nil && term.IsTerminal(int(p.file.Fd())) {
		return p.loop(question, validate, p.readPassword)
	}
	return p.loop(question, validate, p.readLine)
}

func (p *cliPrompter) loop(question string, validate Validator, read func() (string, error)) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s %s ", p.symbol, question)
		answer, err := read()
		if err != nil {
			fmt.Fprintln(p.out)
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if validate == nil || validate(answer) {
			return answer, nil
		}
		fmt.Fprintln(p.out, color.RedString(">> invalid input, please try again"))
	}
}

func (p *cliPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", ErrCancelled
		}
		return line, nil
	}
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return line, nil
}

func (p *cliPrompter) readPassword() (string, error) {
	secret, err := term.ReadPassword(int(p.file.Fd()))
	fmt.Fprintln(p.out) // Add newline after password input
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// MinLength accepts answers of at least n characters.
func MinLength(n int) Validator {
	return func(answer string) bool {
		return len([]rune(answer)) >= n
	}
}

// NonEmpty accepts any answer with content.
func NonEmpty(answer string) bool {
	return answer != ""
}

// OneOf accepts answers matching one of choices, ignoring case.
func OneOf(choices ...string) Validator {
	return func(answer string) bool {
		for _, c := range choices {
			if strings.EqualFold(answer, c) {
				return true
			}
		}
		return false
	}
}
