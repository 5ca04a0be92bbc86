// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

import "fmt"

// A SymbolError reports a reference to a name that exists in neither
// the label table nor the constant table.
type SymbolError struct {
	Name string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("label or constant not found: %s", e.Name)
}

// A FileError reports a missing or unreadable input file.
type FileError struct {
	File string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("no such file or directory: %s", e.File)
}
