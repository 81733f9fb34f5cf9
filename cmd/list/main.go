// Command list prints a directory's entry names, or a regular file's own
// final path segment, per spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tshlabs/ext2edit"
	"github.com/tshlabs/ext2edit/editor"
	"github.com/tshlabs/ext2edit/image"
)

func main() {
	app := &cli.App{
		Name:      "list",
		Usage:     "list a directory's entries, or a file's own name",
		ArgsUsage: "<image> <path>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		driverErr := ext2edit.ToDriverError(err)
		fmt.Fprintln(os.Stderr, driverErr.Error())
		os.Exit(driverErr.ExitCode())
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: list <image> <path>", 1)
	}
	imagePath, path := c.Args().Get(0), c.Args().Get(1)

	sess, err := image.Open(imagePath)
	if err != nil {
		return err
	}
	defer sess.Close()

	names, err := editor.List(sess, path)
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
