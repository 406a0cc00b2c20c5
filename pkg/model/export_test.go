package model

import "github.com/spf13/afero"

func OverloadFS(overload afero.Fs) func() {
	fsRef := fs
	fs = overload
	return func() { fs = fsRef }
}

func OverloadLoadCascade(overload func(string) (Cascade, error)) func() {
	loadCascadeRef := loadCascade
	loadCascade = overload
	return func() { loadCascade = loadCascadeRef }
}

func NewHandle(name string, c Cascade) *Handle {
	return &Handle{name: name, c: c}
}
