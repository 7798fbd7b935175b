package cli

import (
	"os"

	"github.com/ppgtool/ppg/internal/kernel"
)

// resolveKernel builds a Kernel rooted at the current working directory.
func resolveKernel() (*kernel.Kernel, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return kernel.New(dir)
}
