package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tinkerlang/bindery/pkg/bindery"
	"github.com/tinkerlang/bindery/pkg/blocktree"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Parse a block tree file into a fresh environment.
func readBlockFile(filename string) (*bindery.Environment, *blocktree.Block) {
	bytes, err := os.ReadFile(filename)
	if err == nil {
		env := bindery.NewEnvironment()
		//
		root, err := blocktree.Parse(env, string(bytes))
		if err == nil {
			env.AddRoot(root)
			return env, root
		}
		// Handle error
		fmt.Println(err)
		os.Exit(3)
	}
	// Handle error
	fmt.Println(err)
	os.Exit(2)
	// unreachable
	return nil, nil
}
