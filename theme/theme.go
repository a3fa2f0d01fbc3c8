// The theme subpackage deals with locating and describing sprite
// themes. A theme is fundamentally one vector document, optionally
// accompanied by a yaml descriptor carrying display metadata:
//
//	name: Classic
//	author: jane
//	description: The original look.
//	file: classic.svg
//
// The gsprite renderer accepts either the descriptor path or the
// vector document path directly; [Resolve] normalizes both to the
// document path.
package theme

import "os"
import "errors"
import "strings"
import "path/filepath"

import "gopkg.in/yaml.v3"

// A Description holds the metadata of a theme as declared by its
// yaml descriptor.
type Description struct {
	Name string `yaml:"name"`
	Author string `yaml:"author,omitempty"`
	Description string `yaml:"description,omitempty"`

	// FileName is the vector document, relative to the descriptor.
	FileName string `yaml:"file"`

	path string // descriptor location, for resolving FileName
}

var ErrNoFile = errors.New("theme descriptor is missing the 'file' field")

// LoadDescription parses the yaml descriptor at the given path.
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil { return nil, err }
	var desc Description
	err = yaml.Unmarshal(data, &desc)
	if err != nil { return nil, err }
	if desc.FileName == "" { return nil, ErrNoFile }
	desc.path = path
	return &desc, nil
}

// DocumentPath returns the absolute-ish path of the theme's vector
// document, resolved relative to the descriptor.
func (self *Description) DocumentPath() string {
	if filepath.IsAbs(self.FileName) { return self.FileName }
	return filepath.Join(filepath.Dir(self.path), self.FileName)
}

// Resolve normalizes a theme reference to the path of its vector
// document: descriptor paths (.yaml/.yml) are loaded and resolved,
// anything else is assumed to be the document itself.
func Resolve(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		desc, err := LoadDescription(path)
		if err != nil { return "", err }
		return desc.DocumentPath(), nil
	default:
		return path, nil
	}
}
