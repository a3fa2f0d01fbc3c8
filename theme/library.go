package theme

import "io/fs"
import "errors"
import "strings"
import "path/filepath"

// A collection of themes accessible by name.
//
// The goal of a library is to make it easy to discover the themes
// shipped with a game in bulk and keep them all in a single place,
// typically to build a theme selection menu.
type Library struct {
	themes map[string]*Description
}

// Creates a new, empty theme [Library].
func NewLibrary() *Library {
	return &Library{
		themes: make(map[string]*Description),
	}
}

// Returns the current number of themes in the library.
func (self *Library) Size() int { return len(self.themes) }

// Finds out whether a theme with the given name exists in the library.
func (self *Library) HasTheme(name string) bool {
	_, found := self.themes[name]
	return found
}

// Returns the theme with the given name, or nil if not found.
func (self *Library) GetTheme(name string) *Description {
	desc, found := self.themes[name]
	if found { return desc }
	return nil
}

// Calls the given function for each theme in the library, until the
// function returns false or all themes have been visited.
func (self *Library) EachTheme(fn func(name string, desc *Description) bool) {
	for name, desc := range self.themes {
		if !fn(name, desc) { return }
	}
}

// An error that can be returned by [Library.AddTheme]() and
// [Library.LoadDir]() when a theme is not added due to its name
// already being present in the [Library].
var ErrAlreadyPresent = errors.New("theme already present in the library")

// Adds the given theme description into the library.
func (self *Library) AddTheme(desc *Description) error {
	if self.HasTheme(desc.Name) { return ErrAlreadyPresent }
	self.themes[desc.Name] = desc
	return nil
}

// Returns false if the theme can't be removed due to not being found.
func (self *Library) RemoveTheme(name string) bool {
	_, found := self.themes[name]
	if !found { return false }
	delete(self.themes, name)
	return true
}

// Walks the given directory non-recursively and adds every theme
// descriptor (.yaml / .yml) found in it. Returns the number of themes
// added, the number of descriptors skipped and the first error that
// stopped the walk, if any. Descriptors that fail to parse or whose
// names collide are skipped, not fatal.
func (self *Library) LoadDir(dirName string) (added, skipped int, err error) {
	err = filepath.WalkDir(dirName, func(path string, entry fs.DirEntry, err error) error {
		if err != nil { return err }
		if entry.IsDir() {
			if path == dirName { return nil }
			return fs.SkipDir // don't recurse
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			desc, descErr := LoadDescription(path)
			if descErr != nil {
				skipped += 1
				return nil
			}
			if self.AddTheme(desc) != nil {
				skipped += 1
				return nil
			}
			added += 1
		}
		return nil
	})
	return added, skipped, err
}
