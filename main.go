package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yaklabco/solo/cmd/solo"
)

func main() {
	os.Exit(actualMain())
}

func actualMain() int {
	ctx := context.Background()

	rootCmd := solo.NewRootCmd(ctx)

	if err := solo.ExecuteWithFang(ctx, rootCmd); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return solo.ExitStatus(err)
	}

	return 0
}
