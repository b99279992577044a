package main

import (
	"fmt"
	"os"

	tool "github.com/sandeepkv93/workout-auth-service/internal/tools/migrate"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
}
