package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tinkerlang/bindery/pkg/bindery"
	"github.com/tinkerlang/bindery/pkg/blocktree"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] block_file",
	Short: "Check name resolution and type inference for a block tree.",
	Long: `Check name resolution and type inference for a block tree.
	Block trees are given as s-expression files.  Every variable block is
	resolved against the declarations visible at its position, and the
	inferred type of every block is reported.  Unresolved references are
	reported as errors.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Configure logging
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		// Parse block file
		env, root := readBlockFile(args[0])
		// Resolve all references
		unresolved := env.ResolveAll(root)
		// Report bindings
		printBindings(root)
		// Report types
		if getFlag(cmd, "types") {
			printTypes(root)
		}
		//
		if unresolved != 0 {
			fmt.Printf("%d unresolved reference(s)\n", unresolved)
			os.Exit(4)
		}
	},
}

// Print every reference in the tree along with the declaration it resolved to.
func printBindings(root *blocktree.Block) {
	bindery.Visit(root, func(n bindery.Node) {
		user, ok := n.(bindery.VariableUser)
		if !ok {
			return
		}

		for _, ref := range user.References() {
			if ref.IsBound() {
				value := ref.BoundValue()
				fmt.Printf("%s => %s : %s\n", ref.Name(), value, value.Type().DeepDeref())
			} else {
				fmt.Printf("%s => ???\n", ref.Name())
			}
		}
	})
}

// Print the inferred type of every block in the tree.
func printTypes(root *blocktree.Block) {
	bindery.Visit(root, func(n bindery.Node) {
		if block, ok := n.(*blocktree.Block); ok {
			fmt.Printf("%s : %s\n", block, block.Type().DeepDeref())
		}
	})
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("types", false, "report the inferred type of every block")
}
