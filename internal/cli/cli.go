// Package cli holds the plain-terminal output helpers used by the
// one-shot surface: colored painting of display nodes, prompts and
// confirmations.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"gemchat/internal/markup"
)

var (
	// Colors for different types of output
	userInputColor = color.New(color.FgWhite)
	aiOutputColor  = color.New(color.FgCyan)
	headingColor   = color.New(color.FgMagenta, color.Bold)
	boldColor      = color.New(color.FgHiWhite, color.Bold)
	linkColor      = color.New(color.FgBlue, color.Underline)
	titleColor     = color.New(color.FgMagenta, color.Bold)
	separatorColor = color.New(color.FgHiBlack)
	fileColor      = color.New(color.FgRed)
	errorColor     = color.New(color.FgRed, color.Bold)
	promptColor    = color.New(color.FgHiBlue)

	width = goterm.Width()
)

// Separator printed to cli.
func Separator() {
	separator := strings.Repeat("-", width)
	separatorColor.Println(separator)
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := (width - len(title)) / 2
	if leftWidth < 0 {
		leftWidth = 0
	}
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", max(width-len(title)-len(separator1), 0))
	titleColor.Printf("%s%s%s\n", separator1, title, separator2)
}

// UserInput printed to cli.
func UserInput(text string, args ...any) {
	userInputColor.Printf(text, args...)
}

// FileInfo printed to cli.
func FileInfo(text string, args ...any) {
	fileColor.Printf(text, args...)
}

// Error printed to cli.
func Error(text string, args ...any) {
	errorColor.Printf(text, args...)
}

// PrintBlocks paints rendered display nodes to the terminal. Code
// blocks get syntax highlighting, headings and bold spans get weight,
// autolinks get underlined.
func PrintBlocks(blocks []markup.Block) {
	for i, block := range blocks {
		if i > 0 {
			fmt.Println()
		}
		switch b := block.(type) {
		case *markup.HeadingBlock:
			headingColor.Println(b.Visible())
		case *markup.CodeBlock:
			if err := quick.Highlight(os.Stdout, b.Code+"\n", b.Language, "terminal256", "monokai"); err != nil {
				aiOutputColor.Println(b.Code)
			}
		case *markup.TextBlock:
			printSpans(b.Spans)
			fmt.Println()
		}
	}
}

func printSpans(spans []markup.Span) {
	for _, span := range spans {
		switch s := span.(type) {
		case *markup.BoldSpan:
			boldColor.Print(s.Text)
		case *markup.LinkSpan:
			linkColor.Print(s.URL)
		case *markup.TextSpan:
			aiOutputColor.Print(s.Text)
		}
	}
}

// PromptUser for input. Ctrl+J submits, allowing multi-line prompts.
func PromptUser() (string, error) {
	exit := false
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistoryFile:       "/tmp/gemchat.history",
		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == '\x0A' { // Ctrl + J
				exit = true
			}
			return r, true
		},
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if err == readline.ErrInterrupt || exit {
			break
		}
		rl.SetPrompt("")
	}
	return strings.Join(lines, "\n"), nil
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	confirm := &survey.Confirm{
		Message: question,
	}
	answer := false
	if err := survey.AskOne(confirm, &answer); err != nil {
		return false
	}
	return answer
}
