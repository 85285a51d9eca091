package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns the whole file. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed line of logrus text output.
type Entry struct {
	Time    string
	Level   logrus.Level
	Message string
	Fields  [][2]string
	Raw     string
	Parsed  bool
}

// Parse splits a logrus text-formatter line (key=value pairs, values
// optionally quoted). Lines that do not carry a level are returned with
// Parsed=false and Level=InfoLevel.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Level: logrus.InfoLevel}
	for _, kv := range splitPairs(line) {
		switch kv[0] {
		case "time":
			entry.Time = kv[1]
		case "level":
			if lvl, err := logrus.ParseLevel(kv[1]); err == nil {
				entry.Level = lvl
				entry.Parsed = true
			}
		case "msg":
			entry.Message = kv[1]
		default:
			entry.Fields = append(entry.Fields, kv)
		}
	}
	return entry
}

// FilterLevel keeps lines at min severity or above. Unparsed lines are kept.
func FilterLevel(lines []string, min logrus.Level) []string {
	out := lines[:0:0]
	for _, line := range lines {
		entry := Parse(line)
		if !entry.Parsed || entry.Level <= min {
			out = append(out, line)
		}
	}
	return out
}

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
	levelStyle = map[logrus.Level]lipgloss.Style{
		logrus.PanicLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		logrus.FatalLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		logrus.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		logrus.WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		logrus.InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		logrus.DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		logrus.TraceLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	}
)

// Colorize renders a parsed line as "time LEVEL message key=value...".
// Unparsed lines are returned unchanged.
func Colorize(line string) string {
	entry := Parse(line)
	if !entry.Parsed {
		return line
	}
	var b strings.Builder
	if entry.Time != "" {
		b.WriteString(timeStyle.Render(entry.Time))
		b.WriteByte(' ')
	}
	b.WriteString(levelStyle[entry.Level].Render(strings.ToUpper(entry.Level.String())))
	if entry.Message != "" {
		b.WriteByte(' ')
		b.WriteString(entry.Message)
	}
	for _, kv := range entry.Fields {
		b.WriteByte(' ')
		b.WriteString(fieldStyle.Render(kv[0] + "=" + kv[1]))
	}
	return b.String()
}

// ColorizeLines applies Colorize to every line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Colorize(line)
	}
	return out
}

func splitPairs(line string) [][2]string {
	var pairs [][2]string
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \t") {
			return pairs
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return pairs
			}
			value, _ = strconv.Unquote(quoted)
			rest = rest[len(quoted):]
		} else {
			end := strings.IndexAny(rest, " \t")
			if end < 0 {
				end = len(rest)
			}
			value = rest[:end]
			rest = rest[end:]
		}
		pairs = append(pairs, [2]string{key, value})
		rest = strings.TrimLeft(rest, " \t")
	}
	return pairs
}
