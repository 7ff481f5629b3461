// Package main provides the entry point for the envdoctor CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/envdoctor/cmd/envdoctor/cmd"
	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			err := derrors.InternalError(fmt.Sprintf("unexpected panic: %v", r), nil)
			fmt.Fprint(os.Stderr, derrors.FormatForCLI(err))
			code = cmd.ExitFatal
		}
	}()

	return cmd.Execute()
}
