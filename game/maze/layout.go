package maze

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseLayout parses layout text where '%' is a wall, '.' food, 'O' a
// magical pie, 'P' the start cell and ' ' open floor. Dimensions come from
// the line and column counts; trailing empty lines are ignored. A trailing
// row of spaces is open floor and still counts.
func ParseLayout(text string) (*Grid, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: layout is empty", ErrMalformedLayout)
	}

	width := len(lines[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: first row is empty", ErrMalformedLayout)
	}

	var (
		walls, food, pies []Position
		start             Position
		starts            int
	)

	for r, line := range lines {
		if len(line) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrMalformedLayout, r+1, len(line), width)
		}
		for c := 0; c < len(line); c++ {
			pos := Position{Row: r, Col: c}
			switch line[c] {
			case WallSymbol:
				walls = append(walls, pos)
			case FoodSymbol:
				food = append(food, pos)
			case PieSymbol:
				pies = append(pies, pos)
			case StartSymbol:
				start = pos
				starts++
			case FloorSymbol:
			default:
				return nil, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrMalformedLayout, line[c], r+1, c+1)
			}
		}
	}

	switch {
	case starts == 0:
		return nil, fmt.Errorf("%w: layout has no start cell '%c'", ErrMalformedLayout, StartSymbol)
	case starts > 1:
		return nil, fmt.Errorf("%w: layout has %d start cells, expected 1", ErrMalformedLayout, starts)
	}

	g, err := New(width, len(lines), walls, food, pies, start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}
	return g, nil
}

// ReadLayout reads layout text from r and parses it
func ReadLayout(r io.Reader) (*Grid, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	return ParseLayout(b.String())
}

// LoadLayoutFile reads and parses the layout file at path
func LoadLayoutFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout file: %w", err)
	}
	defer f.Close()

	g, err := ReadLayout(f)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return g, nil
}
