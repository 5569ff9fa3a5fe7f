//go:build !linux && !darwin

package engine

import (
	"errors"
	"os"
)

func mmapFile(*os.File, int64) ([]byte, error) {
	return nil, errors.ErrUnsupported
}

func munmapFile([]byte) {}
