// Package transcript parses REPL transcripts.
//
// # Basic syntax
//
// A transcript is a series of inputs entered after a prompt, each followed by
// the output the REPL shows for it:
//
//	rook> let x = 40
//	rook> x + 2
//	42
//	rook> fn double(n) {
//	...       n * 2
//	...   }
//	rook> double(x)
//	80
//
// A line starting with [Prompt] starts an input; the input extends to the
// following lines starting with [ContinuationPrompt]. The other lines are
// output.
//
// # Headings and sessions
//
// Headings of the form "# h1 #", "## h2 ##" and "### h3 ###" split a
// transcript into sessions and name them. A file a.rookts with the content
//
//	rook> 1
//	1
//
//	# strings #
//	rook> "a" + "b"
//	"ab"
//
// contains the sessions a.rookts and a.rookts/strings. Leading and trailing
// empty lines of a session are dropped.
//
// # Comments and directives
//
// A line starting with "// " or made of two or more "/"s is a comment and is
// ignored. Any other line starting with "//" is a directive. Directives may
// only appear at the start of a session, and apply to it and the sessions
// under it.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

// Prompts used by transcripts. They are the prompts of the interactive REPL.
const (
	Prompt             = "rook> "
	ContinuationPrompt = "...   "
)

// Ext is the extension of transcript files.
const Ext = ".rookts"

// Node is a parsed transcript file, or a section of it started by a heading.
type Node struct {
	Name         string
	Directives   []string
	Interactions []Interaction
	Children     []*Node
}

// ParseFromFS finds all transcript files in fsys and parses them.
func ParseFromFS(fsys fs.FS) ([]*Node, error) {
	var nodes []*Node
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != Ext {
			return nil
		}
		file, err := fsys.Open(name)
		if err != nil {
			return err
		}
		defer file.Close()
		lines, err := readAllLines(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		node, err := Parse(name, lines)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
		return nil
	})
	return nodes, err
}

func readAllLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

type fileLines struct {
	filename    string
	lines       []string
	startLineno int // line number of lines[0]
}

func (fl *fileLines) describeLine(i int) string {
	return fmt.Sprintf("%s:%d", fl.filename, i+fl.startLineno)
}

func (fl *fileLines) slice(i, j int) fileLines {
	return fileLines{fl.filename, fl.lines[i:j], fl.startLineno + i}
}

// Parse parses the lines of one transcript file.
func Parse(name string, lines []string) (*Node, error) {
	fl := fileLines{name, lines, 1}
	// nodeStack[0] is the root, nodeStack[1] the active h1, and so on.
	nodeStack := []*Node{{Name: name}}

	for i := 0; i < len(fl.lines); {
		if title, level, ok := parseHeading(fl.lines[i]); ok {
			if level > len(nodeStack) {
				return nil, fmt.Errorf("%s: h%d before h%d", fl.describeLine(i), level, level-1)
			}
			i++
			node := &Node{Name: title}
			parent := nodeStack[level-1]
			parent.Children = append(parent.Children, node)
			nodeStack = append(nodeStack[:level], node)
		}
		j := i
		for ; j < len(fl.lines); j++ {
			if _, _, isHeading := parseHeading(fl.lines[j]); isHeading {
				break
			}
		}
		err := parseSession(nodeStack[len(nodeStack)-1], fl.slice(i, j))
		i = j
		if err != nil {
			return nil, err
		}
	}
	return nodeStack[0], nil
}

func parseHeading(line string) (title string, level int, ok bool) {
	for level := 1; level <= 3; level++ {
		marks := strings.Repeat("#", level)
		if strings.HasPrefix(line, marks+" ") && strings.HasSuffix(line, " "+marks) &&
			len(line) > 2*level+2 {
			return line[level+1 : len(line)-level-1], level, true
		}
	}
	return "", 0, false
}

// Interaction is one input and the output shown for it.
type Interaction struct {
	Code   string
	Output string
}

// Lines returns the input lines of the interaction, in the order they are
// fed to a REPL.
func (i Interaction) Lines() []string {
	return strings.Split(i.Code, "\n")
}

// PromptAndCode returns the input as it appears in a transcript.
func (i Interaction) PromptAndCode() string {
	lines := i.Lines()
	var sb strings.Builder
	sb.WriteString(Prompt + lines[0])
	for _, line := range lines[1:] {
		sb.WriteString("\n" + ContinuationPrompt + line)
	}
	return sb.String()
}

var (
	errFirstLineDoesntHavePrompt            = errors.New("first non-comment line of a session doesn't have prompt")
	errDirectiveOnlyAllowedAtStartOfSession = errors.New("directive only allowed at start of a session")
)

func isPromptLine(line string) bool {
	return strings.HasPrefix(line, Prompt) || line == strings.TrimRight(Prompt, " ")
}

// Parses a session into n. Mutates n.Directives and n.Interactions on success.
func parseSession(n *Node, fl fileLines) error {
	lines := fl.lines
	var directives []string
	start := 0
	for ; start < len(lines); start++ {
		if lines[start] == "" || isComment(lines[start]) {
			continue
		} else if directive, ok := parseDirective(lines[start]); ok {
			directives = append(directives, directive)
		} else {
			break
		}
	}
	if start < len(lines) && !isPromptLine(lines[start]) {
		return fmt.Errorf("%s: %w", fl.describeLine(start), errFirstLineDoesntHavePrompt)
	}
	for len(lines) > 0 && (lines[len(lines)-1] == "" || isComment(lines[len(lines)-1])) {
		lines = lines[:len(lines)-1]
	}
	var interactions []Interaction
	for i := start; i < len(lines); {
		code := []string{strings.TrimPrefix(lines[i], strings.TrimRight(Prompt, " "))}
		code[0] = strings.TrimPrefix(code[0], " ")
		i++
		for i < len(lines) && strings.HasPrefix(lines[i], ContinuationPrompt) {
			code = append(code, lines[i][len(ContinuationPrompt):])
			i++
		}
		var output strings.Builder
		for i < len(lines) && !isPromptLine(lines[i]) {
			if _, ok := parseDirective(lines[i]); ok {
				return fmt.Errorf("%s: %w",
					fl.describeLine(i), errDirectiveOnlyAllowedAtStartOfSession)
			} else if !isComment(lines[i]) {
				output.WriteString(lines[i] + "\n")
			}
			i++
		}
		interactions = append(interactions, Interaction{
			strings.Join(code, "\n"),
			output.String()})
	}
	n.Directives = directives
	n.Interactions = interactions
	return nil
}

var slashOnlyCommentPattern = regexp.MustCompile(`^///*$`)

func isComment(line string) bool {
	return strings.HasPrefix(line, "// ") || slashOnlyCommentPattern.MatchString(line)
}

func parseDirective(line string) (string, bool) {
	if strings.HasPrefix(line, "//") && !isComment(line) {
		return line[2:], true
	}
	return "", false
}
