package glyph

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is a user glyph read from a definition file.
//
// Rows are drawn top to bottom, 5 characters each. '#', 'X', '*' and '1'
// light a pixel, anything else leaves it dark. Missing rows are blank.
type Definition struct {
	Index int      `yaml:"index"`
	Name  string   `yaml:"name,omitempty"`
	Rows  []string `yaml:"rows"`
}

type definitionFile struct {
	Glyphs []Definition `yaml:"glyphs"`
}

// ParseYAML decodes a glyph definition file:
//
//	glyphs:
//	  - index: 0
//	    name: bell
//	    rows:
//	      - "..#.."
//	      - ".###."
func ParseYAML(data []byte) ([]Definition, error) {
	var f definitionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("glyph: %w", err)
	}
	if len(f.Glyphs) == 0 {
		return nil, errors.New("glyph: no glyphs defined")
	}
	for _, d := range f.Glyphs {
		if d.Index < 0 || d.Index >= UserSlots {
			return nil, fmt.Errorf("glyph: index %d out of range 0..%d", d.Index, UserSlots-1)
		}
		if len(d.Rows) > 8 {
			return nil, fmt.Errorf("glyph: index %d has %d rows, max 8", d.Index, len(d.Rows))
		}
		for r, row := range d.Rows {
			if n := len([]rune(row)); n > Width {
				return nil, fmt.Errorf("glyph: index %d row %d is %d wide, max %d", d.Index, r, n, Width)
			}
		}
	}
	return f.Glyphs, nil
}

// Bitmap returns the definition in the row format accepted by Set.Program.
func (d Definition) Bitmap() [8]byte {
	var bm [8]byte
	for r, row := range d.Rows {
		if r >= len(bm) {
			break
		}
		for c, ch := range []rune(row) {
			if c >= Width {
				break
			}
			if strings.ContainsRune("#X*1", ch) {
				bm[r] |= 1 << (4 - c)
			}
		}
	}
	return bm
}
