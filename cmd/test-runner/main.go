// Package main - test runner
// Executable to run the headless stress scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/mbellver/estatesim/test"
)

func main() {
	fmt.Println("ESTATESIM - STRESS SCENARIO SUITE")
	fmt.Println("=================================")

	scenario, err := test.NewHighLeverageScenario()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build scenario: %v\n", err)
		os.Exit(1)
	}
	scenario.Run()

	passed := 0
	failed := 0
	for _, r := range scenario.Results() {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}

	fmt.Printf("\nRESULTS: %d passed, %d failed\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
