// Command hard-link adds a second name for an existing regular file inside
// an ext2edit image, per spec.md §6.
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
		Name:      "hard-link",
		Usage:     "link a new path to an existing file's inode",
		ArgsUsage: "<image> <target> <new-path>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		driverErr := ext2edit.ToDriverError(err)
		fmt.Fprintln(os.Stderr, driverErr.Error())
		os.Exit(driverErr.ExitCode())
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: hard-link <image> <target> <new-path>", 1)
	}
	imagePath := c.Args().Get(0)
	target := c.Args().Get(1)
	newPath := c.Args().Get(2)

	sess, err := image.Open(imagePath)
	if err != nil {
		return err
	}
	defer sess.Close()

	return editor.HardLink(sess, target, newPath)
}
