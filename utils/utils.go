package utils

import (
	"os"
)

// SaveContentTo saves the given content to the given file.
func SaveContentTo(fpath, content string) error {
	return os.WriteFile(fpath, []byte(content), 0644)
}

// FileExists tests whether this file exists and is or not a directory.
func FileExists(filename string) (exist, isDir bool) {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false, false
	}
	return true, info.IsDir()
}

// Must panics if err is non-nil. Used at call sites where the error
// indicates a programming or setup mistake rather than a runtime
// condition the caller should recover from.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

func Min[T int | float64 | uint64](xs ...T) T {
	res := xs[0]
	for _, x := range xs {
		if x < res {
			res = x
		}
	}
	return res
}

func Max[T int | float64 | uint64](xs ...T) T {
	res := xs[0]
	for _, x := range xs {
		if x > res {
			res = x
		}
	}
	return res
}
